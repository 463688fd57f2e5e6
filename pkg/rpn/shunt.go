package rpn

// toPostfix transforms an infix token sequence into postfix order with an
// auxiliary operator stack. As a side effect it registers every distinct
// variable name into env with a default value, never overwriting an existing
// binding, so assignment targets always have a slot.
//
// Stray brackets from unbalanced input are flushed to the output untouched;
// the evaluator rejects them when it reaches one.
func toPostfix(tokens []Token, env Env) []Token {
	output := make([]Token, 0, len(tokens))
	var stack []Token

	for _, tok := range tokens {
		switch tok.Type {
		case TokenOperand:
			output = append(output, tok)

		case TokenVariable:
			env.Ensure(tok.Name)
			output = append(output, tok)

		case TokenFunction:
			// Waits on the stack for its argument group.
			stack = append(stack, tok)

		case TokenOpenBracket:
			stack = append(stack, tok)

		case TokenCloseBracket:
			for len(stack) > 0 {
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				if top.Type == TokenOpenBracket {
					break
				}
				output = append(output, top)
			}
			// A function directly beneath the bracket pair binds to the
			// just-closed argument group.
			if len(stack) > 0 && stack[len(stack)-1].Type == TokenFunction {
				output = append(output, stack[len(stack)-1])
				stack = stack[:len(stack)-1]
			}

		case TokenComma:
			// Argument boundary: flush to the enclosing open bracket, which
			// stays for the eventual close bracket to consume.
			for len(stack) > 0 && stack[len(stack)-1].Type != TokenOpenBracket {
				output = append(output, stack[len(stack)-1])
				stack = stack[:len(stack)-1]
			}

		case TokenSemiColon:
			// Statement boundary: flush everything, then emit the marker so
			// the evaluator resets its operand stack.
			for len(stack) > 0 {
				output = append(output, stack[len(stack)-1])
				stack = stack[:len(stack)-1]
			}
			output = append(output, tok)

		case TokenOperator:
			for len(stack) > 0 {
				top := stack[len(stack)-1]
				if top.Type != TokenOperator {
					break
				}
				if (tok.Op.Associativity() == AssocLeft && tok.Op.Precedence() <= top.Op.Precedence()) ||
					(tok.Op.Associativity() == AssocRight && tok.Op.Precedence() < top.Op.Precedence()) {
					output = append(output, top)
					stack = stack[:len(stack)-1]
					continue
				}
				break
			}
			// A bare function application exposed by the pop loop binds
			// tighter than any operator comparison.
			if len(stack) > 0 && stack[len(stack)-1].Type == TokenFunction {
				output = append(output, stack[len(stack)-1])
				stack = stack[:len(stack)-1]
			}
			stack = append(stack, tok)
		}
	}

	for len(stack) > 0 {
		output = append(output, stack[len(stack)-1])
		stack = stack[:len(stack)-1]
	}
	return output
}
