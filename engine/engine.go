// Package engine drives conversations against a compiled rule base. It owns
// the session state machine: per-session variables, follow-up pattern focus,
// and response rotation. One engine serves many concurrent sessions.
package engine

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yooz-lang/go-yooz/cache"
	"github.com/yooz-lang/go-yooz/match"
	"github.com/yooz-lang/go-yooz/normalize"
	"github.com/yooz-lang/go-yooz/render"
	"github.com/yooz-lang/go-yooz/rulebase"
	"github.com/yooz-lang/go-yooz/rulebase/cond"
)

// DefaultFallback is the reply of last resort when nothing matches and the
// rule base carries no global responses.
const DefaultFallback = "متاسفم، متوجه نشدم."

// RotationPolicy selects among a pattern's alternate responses.
type RotationPolicy int

const (
	// RotateFirst always picks the first response.
	RotateFirst RotationPolicy = iota
	// RotateRoundRobin cycles through responses per session.
	RotateRoundRobin
	// RotateRandom picks a response at random.
	RotateRandom
)

// ParseRotation converts a policy name to a RotationPolicy.
func ParseRotation(name string) (RotationPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "first":
		return RotateFirst, nil
	case "round-robin", "roundrobin":
		return RotateRoundRobin, nil
	case "random":
		return RotateRandom, nil
	}
	return RotateFirst, fmt.Errorf("unknown rotation policy %q", name)
}

func (p RotationPolicy) String() string {
	switch p {
	case RotateRoundRobin:
		return "round-robin"
	case RotateRandom:
		return "random"
	default:
		return "first"
	}
}

// Options configures an engine.
type Options struct {
	// Fallback overrides the reply used when nothing matches. Empty means
	// use the rule base's global responses, then DefaultFallback.
	Fallback string

	// Rotation selects among alternate responses of a matched pattern.
	Rotation RotationPolicy

	// StrictRender makes unresolved template references an error instead of
	// rendering as empty text.
	StrictRender bool

	// Seed fixes the random rotation sequence. Zero seeds from the clock.
	Seed int64

	// CacheSize bounds the normalization cache. Zero means unlimited.
	CacheSize int

	Logger *zap.Logger
}

// Source identifies which mechanism produced a reply.
type Source string

const (
	SourceNested   Source = "nested"
	SourcePattern  Source = "pattern"
	SourceRule     Source = "rule"
	SourceGlobal   Source = "global"
	SourceFallback Source = "fallback"
)

// Result is one engine reply.
type Result struct {
	Text    string
	Matched bool
	Source  Source
	Turn    int
}

// Engine evaluates utterances against one rule base.
type Engine struct {
	rb   *rulebase.RuleBase
	norm *normalize.Normalizer
	nc   *cache.NormCache
	opts Options
	log  *zap.Logger
}

// New creates an engine for the rule base.
func New(rb *rulebase.RuleBase, opts Options) *Engine {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Engine{
		rb:   rb,
		norm: normalize.New(rb),
		nc:   cache.New(opts.CacheSize),
		opts: opts,
		log:  opts.Logger,
	}
}

// RuleBase returns the compiled rule base the engine serves.
func (e *Engine) RuleBase() *rulebase.RuleBase {
	return e.rb
}

// CacheStats reports normalization cache statistics.
func (e *Engine) CacheStats() cache.Stats {
	return e.nc.Stats()
}

// Session is one conversation. Sessions are safe for concurrent use, though
// a conversation is inherently sequential.
type Session struct {
	engine *Engine
	id     string

	mu        sync.Mutex
	vars      map[string]string
	rotation  map[*rulebase.Pattern]int
	globalRot int
	last      *rulebase.Pattern
	turn      int
	rng       *rand.Rand
}

// NewSession starts a conversation with a generated ID.
func (e *Engine) NewSession() *Session {
	return e.NewSessionWithID(uuid.NewString())
}

// NewSessionWithID starts a conversation with the given ID. Variables begin
// at the rule base's declared initial values.
func (e *Engine) NewSessionWithID(id string) *Session {
	seed := e.opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	vars := make(map[string]string, len(e.rb.Variables))
	for k, v := range e.rb.Variables {
		vars[k] = v
	}
	return &Session{
		engine:   e,
		id:       id,
		vars:     vars,
		rotation: make(map[*rulebase.Pattern]int),
		rng:      rand.New(rand.NewSource(seed)),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Turn returns the number of exchanges so far.
func (s *Session) Turn() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.turn
}

// Var reads a session variable.
func (s *Session) Var(name string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.vars[name]
	return v, ok
}

// SetVar writes a session variable.
func (s *Session) SetVar(name, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vars[name] = value
}

// Vars returns a copy of the session's variables.
func (s *Session) Vars() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.vars))
	for k, v := range s.vars {
		out[k] = v
	}
	return out
}

// varStore adapts the locked session to the renderer's store. Respond holds
// the session lock for the whole turn, so the store accesses vars directly.
type varStore struct{ vars map[string]string }

func (v varStore) Get(name string) (string, bool) {
	val, ok := v.vars[name]
	return val, ok
}

func (v varStore) Set(name, value string) { v.vars[name] = value }

// condEnv exposes session variables and utterance containment to rule
// conditions. An unbound identifier evaluates to whether the utterance
// contains that word.
type condEnv struct {
	vars  map[string]string
	input normalize.Result
}

func (e condEnv) Lookup(name string) (string, bool) {
	v, ok := e.vars[name]
	return v, ok
}

func (e condEnv) Contains(word string) bool {
	return e.input.Contains(word)
}

// Respond evaluates one utterance and returns the reply. Evaluation order:
// follow-ups of the last matched pattern, weighted rules, top-level patterns,
// then the fallback chain.
func (s *Session) Respond(input string) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.engine
	norm := e.nc.GetOrCompute(input, func() normalize.Result {
		return e.norm.Normalize(input)
	})
	s.turn++

	res, err := s.respond(norm)
	if err != nil {
		return Result{}, err
	}
	if e.rb.AdditionalResponse != "" {
		suffix, rerr := s.render(e.rb.AdditionalResponse, nil)
		if rerr != nil {
			return Result{}, rerr
		}
		if suffix != "" {
			res.Text = strings.TrimSpace(res.Text + " " + suffix)
		}
	}
	res.Turn = s.turn
	e.log.Debug("respond",
		zap.String("session", s.id),
		zap.Int("turn", s.turn),
		zap.String("source", string(res.Source)),
		zap.Bool("matched", res.Matched),
	)
	return res, nil
}

func (s *Session) respond(input normalize.Result) (Result, error) {
	e := s.engine

	// Follow-ups of the last matched pattern take priority.
	if s.last != nil && len(s.last.Nested) > 0 {
		if p, caps, ok := match.FirstPattern(s.last.Nested, input, e.norm.IsStopWord); ok {
			text, _, err := s.selectResponse(p, caps, input)
			if err != nil {
				return Result{}, err
			}
			s.last = p
			return Result{Text: text, Matched: true, Source: SourceNested}, nil
		}
	}

	// Weighted rules.
	env := condEnv{vars: s.vars, input: input}
	if r, ok := match.Rule(e.rb, env, func(r *rulebase.Rule, err error) {
		e.log.Warn("rule condition failed",
			zap.String("condition", r.ConditionText),
			zap.Error(err),
		)
	}); ok {
		text, err := s.render(r.Response, nil)
		if err != nil {
			return Result{}, err
		}
		s.last = nil
		return Result{Text: text, Matched: true, Source: SourceRule}, nil
	}

	// Top-level patterns, following response continuations.
	if text, ok, err := s.matchPatterns(input); err != nil {
		return Result{}, err
	} else if ok {
		return Result{Text: text, Matched: true, Source: SourcePattern}, nil
	}

	s.last = nil
	return s.fallback()
}

// matchPatterns scans the top-level patterns in declaration order. When the
// selected response carries a continuation marker, the scan resumes after the
// matched pattern and the next reply is appended.
func (s *Session) matchPatterns(input normalize.Result) (string, bool, error) {
	e := s.engine
	var parts []string
	visited := make(map[*rulebase.Pattern]bool)
	start := 0

	for start < len(e.rb.Patterns) {
		var matched *rulebase.Pattern
		var caps match.Captures
		idx := -1
		for i := start; i < len(e.rb.Patterns); i++ {
			p := e.rb.Patterns[i]
			if visited[p] {
				continue
			}
			if c, ok := match.Pattern(p, input, e.norm.IsStopWord); ok {
				matched, caps, idx = p, c, i
				break
			}
		}
		if matched == nil {
			break
		}

		visited[matched] = true
		text, cont, err := s.selectResponse(matched, caps, input)
		if err != nil {
			return "", false, err
		}
		if text != "" {
			parts = append(parts, text)
		}
		s.last = matched

		if !cont {
			return strings.Join(parts, " "), true, nil
		}
		start = idx + 1
	}

	if len(parts) > 0 {
		return strings.Join(parts, " "), true, nil
	}
	return "", false, nil
}

// selectResponse picks a matched pattern's reply. Conditional patterns pick
// by branch condition; others apply the rotation policy and may carry a
// continuation marker.
func (s *Session) selectResponse(p *rulebase.Pattern, caps match.Captures, input normalize.Result) (string, bool, error) {
	if p.IsConditional() {
		text, err := s.condResponse(p, caps, input)
		return text, false, err
	}
	resp := s.pickResponse(p, p.Responses)
	text, err := s.render(resp.Text, caps)
	return text, resp.Continue, err
}

// condResponse answers with the first branch whose condition holds, falling
// back to the pattern's default. Conditions that reference captures compile
// here after substitution; eval errors skip the branch.
func (s *Session) condResponse(p *rulebase.Pattern, caps match.Captures, input normalize.Result) (string, error) {
	env := condEnv{vars: s.vars, input: input}
	for i := range p.Branches {
		br := &p.Branches[i]
		compiled := br.Condition
		if compiled == nil {
			c, err := cond.Compile(render.ExpandCaptures(br.ConditionText, caps))
			if err != nil {
				s.engine.log.Warn("branch condition failed",
					zap.String("condition", br.ConditionText),
					zap.Error(err),
				)
				continue
			}
			compiled = c
		}
		ok, err := compiled.Eval(env)
		if err != nil {
			s.engine.log.Warn("branch condition failed",
				zap.String("condition", br.ConditionText),
				zap.Error(err),
			)
			continue
		}
		if ok {
			return s.render(br.Response, caps)
		}
	}
	return s.render(p.Default, caps)
}

// pickResponse applies the rotation policy to a pattern's alternates.
func (s *Session) pickResponse(key *rulebase.Pattern, responses []rulebase.Response) rulebase.Response {
	if len(responses) == 1 {
		return responses[0]
	}
	switch s.engine.opts.Rotation {
	case RotateRoundRobin:
		i := s.rotation[key] % len(responses)
		s.rotation[key]++
		return responses[i]
	case RotateRandom:
		return responses[s.rng.Intn(len(responses))]
	default:
		return responses[0]
	}
}

// fallback runs the no-match chain: configured fallback text, the rule
// base's global responses, then the built-in reply.
func (s *Session) fallback() (Result, error) {
	e := s.engine
	if e.opts.Fallback != "" {
		text, err := s.render(e.opts.Fallback, nil)
		if err != nil {
			return Result{}, err
		}
		return Result{Text: text, Source: SourceFallback}, nil
	}

	if len(e.rb.GlobalResponses) > 0 {
		resp := s.pickGlobal(e.rb.GlobalResponses)
		text, err := s.render(resp, nil)
		if err != nil {
			return Result{}, err
		}
		return Result{Text: text, Source: SourceGlobal}, nil
	}

	return Result{Text: DefaultFallback, Source: SourceFallback}, nil
}

func (s *Session) pickGlobal(responses []string) string {
	if len(responses) == 1 {
		return responses[0]
	}
	switch s.engine.opts.Rotation {
	case RotateRoundRobin:
		i := s.globalRot % len(responses)
		s.globalRot++
		return responses[i]
	case RotateRandom:
		return responses[s.rng.Intn(len(responses))]
	default:
		return responses[0]
	}
}

func (s *Session) render(template string, caps match.Captures) (string, error) {
	return render.Render(template, caps, s.engine.rb.Definitions, varStore{vars: s.vars}, render.Options{
		Strict: s.engine.opts.StrictRender,
	})
}
