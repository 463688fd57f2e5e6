// Package api implements the REST API exposing expression evaluation and
// calculator sessions over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/rpnkit/rpnkit/pkg/config"
	"github.com/rpnkit/rpnkit/pkg/number"
	"github.com/rpnkit/rpnkit/pkg/rpn"
	"github.com/rpnkit/rpnkit/pkg/session"
	"github.com/rpnkit/rpnkit/pkg/store"
)

// errStatus maps evaluation error tags to the API status field.
var errStatus = map[string]string{
	number.TagMalformedExpression:     "MALFORMED_EXPRESSION",
	number.TagDivisionByZero:          "DIVISION_BY_ZERO",
	number.TagFactorialDomainError:    "FACTORIAL_DOMAIN_ERROR",
	number.TagNoVariableForAssignment: "NO_VARIABLE_FOR_ASSIGNMENT",
	number.TagUnsupportedToken:        "UNSUPPORTED_TOKEN",
	number.TagResourceLimitError:      "RESOURCE_LIMIT_ERROR",
	number.TagInvalidExpression:       "INVALID_EXPRESSION",
}

var validVariableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Server is the calculator API server.
type Server struct {
	app       *fiber.App
	store     *store.Store
	limits    rpn.Limits
	variables map[string]float64 // presets loaded into every new session
}

// New creates a new API server backed by the given session store.
func New(st *store.Store, cfg config.Config) *Server {
	srv := &Server{
		store:     st,
		limits:    cfg.RPNLimits(),
		variables: cfg.Variables,
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
	})

	app.Use(requestLogger)

	app.Get("/healthz", srv.health)

	app.Post("/v1/evaluate", srv.evaluateOnce)

	app.Post("/v1/sessions", srv.createSession)
	app.Get("/v1/sessions", srv.listSessions)
	app.Get("/v1/sessions/:id", srv.getSession)
	app.Delete("/v1/sessions/:id", srv.deleteSession)
	app.Post("/v1/sessions/:id/evaluate", srv.evaluateInSession)
	app.Get("/v1/sessions/:id/variables", srv.listVariables)
	app.Put("/v1/sessions/:id/variables/:name", srv.putVariable)

	srv.app = app
	return srv
}

// Listen starts the HTTP server on the given address.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App returns the underlying Fiber app (useful for testing).
func (s *Server) App() *fiber.App {
	return s.app
}

func requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	logrus.WithFields(logrus.Fields{
		"method":   c.Method(),
		"path":     c.Path(),
		"status":   c.Response().StatusCode(),
		"duration": time.Since(start),
	}).Info("request")
	return err
}

func (s *Server) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// --- Evaluation Handlers ---

type evaluateRequest struct {
	Expression string `json:"expression"`
}

func (s *Server) evaluateOnce(c *fiber.Ctx) error {
	var req evaluateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    400,
				"message": fmt.Sprintf("invalid request body: %v", err),
				"status":  "INVALID_ARGUMENT",
			},
		})
	}
	if req.Expression == "" {
		return c.Status(400).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    400,
				"message": "expression is required",
				"status":  "INVALID_ARGUMENT",
			},
		})
	}

	sess := session.New(s.limits)
	s.applyPresets(sess)
	return s.evaluate(c, sess, nil, req.Expression)
}

func (s *Server) evaluateInSession(c *fiber.Ctx) error {
	rec, err := s.store.Get(c.Params("id"))
	if err != nil {
		return c.Status(404).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    404,
				"message": err.Error(),
				"status":  "NOT_FOUND",
			},
		})
	}

	var req evaluateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    400,
				"message": fmt.Sprintf("invalid request body: %v", err),
				"status":  "INVALID_ARGUMENT",
			},
		})
	}
	if req.Expression == "" {
		return c.Status(400).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    400,
				"message": "expression is required",
				"status":  "INVALID_ARGUMENT",
			},
		})
	}

	return s.evaluate(c, rec.Session, rec, req.Expression)
}

// evaluate runs expression against sess. When rec is non-nil the evaluation
// is counted against it.
func (s *Server) evaluate(c *fiber.Ctx, sess *session.Session, rec *store.Record, expression string) error {
	expr, err := sess.Compile(expression)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    400,
				"message": err.Error(),
				"status":  "INVALID_ARGUMENT",
			},
		})
	}

	result, err := expr.Evaluate()
	if err != nil {
		status := "EVALUATION_ERROR"
		var evalErr *number.Error
		if errors.As(err, &evalErr) && len(evalErr.Tags) > 0 {
			if mapped, ok := errStatus[evalErr.Tags[0]]; ok {
				status = mapped
			}
		}
		return c.Status(422).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    422,
				"message": err.Error(),
				"status":  status,
			},
		})
	}

	resp := fiber.Map{"result": numberToJSON(result)}
	if rec != nil {
		resp["evaluations"] = rec.CountEval()
	}
	return c.JSON(resp)
}

// --- Session Handlers ---

func (s *Server) createSession(c *fiber.Ctx) error {
	rec := s.store.Create()
	s.applyPresets(rec.Session)
	return c.JSON(sessionToJSON(rec))
}

func (s *Server) listSessions(c *fiber.Ctx) error {
	records := s.store.List()

	items := make([]fiber.Map, len(records))
	for i, rec := range records {
		items[i] = sessionToJSON(rec)
	}
	return c.JSON(fiber.Map{"sessions": items})
}

func (s *Server) getSession(c *fiber.Ctx) error {
	rec, err := s.store.Get(c.Params("id"))
	if err != nil {
		return c.Status(404).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    404,
				"message": err.Error(),
				"status":  "NOT_FOUND",
			},
		})
	}
	return c.JSON(sessionToJSON(rec))
}

func (s *Server) deleteSession(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := s.store.Delete(id); err != nil {
		return c.Status(404).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    404,
				"message": err.Error(),
				"status":  "NOT_FOUND",
			},
		})
	}
	return c.JSON(fiber.Map{"id": id, "deleted": true})
}

// --- Variable Handlers ---

func (s *Server) listVariables(c *fiber.Ctx) error {
	rec, err := s.store.Get(c.Params("id"))
	if err != nil {
		return c.Status(404).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    404,
				"message": err.Error(),
				"status":  "NOT_FOUND",
			},
		})
	}

	vars := rec.Session.Environment().Snapshot()
	items := make(map[string]fiber.Map, len(vars))
	for name, v := range vars {
		items[name] = numberToJSON(v)
	}
	return c.JSON(fiber.Map{"variables": items})
}

type putVariableRequest struct {
	Integer *string  `json:"integer"`
	Decimal *float64 `json:"decimal"`
}

func (s *Server) putVariable(c *fiber.Ctx) error {
	rec, err := s.store.Get(c.Params("id"))
	if err != nil {
		return c.Status(404).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    404,
				"message": err.Error(),
				"status":  "NOT_FOUND",
			},
		})
	}

	name := c.Params("name")
	if !validVariableName.MatchString(name) {
		return c.Status(400).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    400,
				"message": fmt.Sprintf("invalid variable name %q", name),
				"status":  "INVALID_ARGUMENT",
			},
		})
	}

	var req putVariableRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    400,
				"message": fmt.Sprintf("invalid request body: %v", err),
				"status":  "INVALID_ARGUMENT",
			},
		})
	}
	if (req.Integer == nil) == (req.Decimal == nil) {
		return c.Status(400).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    400,
				"message": "exactly one of integer or decimal is required",
				"status":  "INVALID_ARGUMENT",
			},
		})
	}

	env := rec.Session.Environment()
	var value number.Number
	if req.Integer != nil {
		value, err = number.Parse(*req.Integer)
		if err != nil || !value.IsInteger() {
			return c.Status(400).JSON(fiber.Map{
				"error": fiber.Map{
					"code":    400,
					"message": fmt.Sprintf("%q is not an integer", *req.Integer),
					"status":  "INVALID_ARGUMENT",
				},
			})
		}
	} else {
		value = number.FromFloat(*req.Decimal)
	}
	env.Set(name, value)

	return c.JSON(fiber.Map{
		"name":  name,
		"value": numberToJSON(value),
	})
}

// --- Helpers ---

func (s *Server) applyPresets(sess *session.Session) {
	env := sess.Environment()
	for name, v := range s.variables {
		env.SetFloat(name, v)
	}
}

func numberToJSON(v number.Number) fiber.Map {
	raw, err := v.MarshalJSON()
	if err != nil {
		raw = []byte(`null`)
	}
	return fiber.Map{
		"kind":  v.Kind().String(),
		"value": json.RawMessage(raw),
		"text":  v.String(),
	}
}

func sessionToJSON(rec *store.Record) fiber.Map {
	return fiber.Map{
		"id":          rec.ID,
		"createTime":  rec.CreateTime.Format(time.RFC3339),
		"lastUsed":    rec.LastUsed.Format(time.RFC3339),
		"evaluations": rec.Evaluations(),
		"variables":   rec.Session.Environment().Len(),
	}
}
