package engine

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/anatolykoptev/go-kit/llm"
)

// CallOpts are per-call sampling overrides. Zero values keep the client defaults.
type CallOpts struct {
	Temperature float64
	MaxTokens   int
}

// LLM is a chat-completion backend.
type LLM interface {
	Complete(ctx context.Context, system, user string, opts CallOpts) (string, error)
}

type kitLLM struct {
	c *llm.Client
}

// NewKitLLM adapts an OpenAI-compatible go-kit client to LLM.
func NewKitLLM(c *llm.Client) LLM {
	return &kitLLM{c: c}
}

func (k *kitLLM) Complete(ctx context.Context, system, user string, opts CallOpts) (string, error) {
	callOpts := append(
		optionIf(opts.Temperature > 0, llm.WithChatTemperature(opts.Temperature)),
		optionIf(opts.MaxTokens > 0, llm.WithChatMaxTokens(opts.MaxTokens))...,
	)
	return k.c.Complete(ctx, system, user, callOpts...)
}

// optionIf returns o as a one-element slice when set is true.
func optionIf[O any](set bool, o O) []O {
	if !set {
		return nil
	}
	return []O{o}
}

var errNoLLM = errors.New("LLM client is not configured")

// stripFences removes a markdown code fence wrapped around LLM output.
// The opening fence line is dropped whatever its language tag.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = s[3:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// callLLM runs one completion and counts it. Failures come back as LLM errors
// prefixed with phase.
func callLLM(ctx context.Context, phase, system, user string, opts CallOpts) (string, error) {
	metrics.LLMCalls.Add(1)
	if cfg.LLM == nil {
		metrics.LLMErrors.Add(1)
		return "", LLMError(phase, errNoLLM)
	}
	out, err := cfg.LLM.Complete(ctx, system, user, opts)
	if err != nil {
		metrics.LLMErrors.Add(1)
		return "", LLMError(phase, err)
	}
	return strings.TrimSpace(out), nil
}

// completeJSON calls the LLM and decodes its fenced or bare JSON answer into T.
// A transport failure is an error; an undecodable answer returns ok=false.
func completeJSON[T any](ctx context.Context, phase, system, user string, opts CallOpts) (out T, ok bool, err error) {
	raw, err := callLLM(ctx, phase, system, user, opts)
	if err != nil {
		return out, false, err
	}
	if err := json.Unmarshal([]byte(stripFences(raw)), &out); err != nil {
		return out, false, nil
	}
	return out, true, nil
}
