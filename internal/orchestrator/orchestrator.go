package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"HealthBuddy/internal/backend"
	"HealthBuddy/internal/config"
	"HealthBuddy/internal/session"
	"HealthBuddy/internal/tool"

	"go.opentelemetry.io/otel/trace"
)

// ChatClient is the slice of the backend client the orchestrator needs. A
// successful response always carries at least one choice; implementations
// return an error instead of an empty response.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req backend.ChatRequest) (*backend.ChatResponse, error)
}

// Orchestrator drives one request/response cycle against the model. The
// protocol is two-pass: the first call offers the capability declarations
// with tool_choice "auto"; if the model requests tools they are resolved and
// folded back into the transcript, and a second, capability-free call forces
// a natural-language reply. At most two model calls happen per user turn.
type Orchestrator struct {
	client ChatClient
	tools  *tool.Registry
	model  string
	logger *slog.Logger
	tracer trace.Tracer
}

// New creates an orchestrator over the given client and capability registry.
func New(client ChatClient, tools *tool.Registry, model string, logger *slog.Logger, tracer trace.Tracer) *Orchestrator {
	return &Orchestrator{
		client: client,
		tools:  tools,
		model:  model,
		logger: logger,
		tracer: tracer,
	}
}

// Respond runs one orchestration cycle over the session transcript, which
// must already end with the user's message. The final reply is appended to
// the session and returned. Service failures never escape: they become a
// fixed apology reply and the cycle terminates without retry.
func (o *Orchestrator) Respond(ctx context.Context, sess *session.Session) string {
	ctx, span := o.tracer.Start(ctx, "orchestration_cycle")
	defer span.End()

	firstReq := backend.ChatRequest{
		Model:       o.model,
		Messages:    toWire(sess.Transcript),
		Tools:       o.tools.Declarations(),
		ToolChoice:  "auto",
		Temperature: config.Temperature,
		MaxTokens:   config.MaxResponseTokens,
	}

	resp, err := o.client.CreateChatCompletion(ctx, firstReq)
	if err != nil {
		return o.apologize(sess, err)
	}

	msg := resp.Choices[0].Message
	if len(msg.ToolCalls) == 0 {
		reply := strings.TrimSpace(msg.Content)
		sess.AppendAssistant(reply)
		return reply
	}

	o.resolveToolCalls(ctx, sess, msg)

	// Second pass: no capability declarations, so the reply is always
	// natural language and the protocol cannot chain further tool calls.
	secondReq := backend.ChatRequest{
		Model:       o.model,
		Messages:    toWire(sess.Transcript),
		Temperature: config.Temperature,
		MaxTokens:   config.MaxResponseTokens,
	}

	finalResp, err := o.client.CreateChatCompletion(ctx, secondReq)
	if err != nil {
		return o.apologize(sess, err)
	}

	reply := strings.TrimSpace(finalResp.Choices[0].Message.Content)
	sess.AppendAssistant(reply)
	return reply
}

// resolveToolCalls dispatches each requested tool in model order and appends
// the assistant message followed by one result per call. Dispatch failures
// become error payloads in the result content, never a raised error.
func (o *Orchestrator) resolveToolCalls(ctx context.Context, sess *session.Session, msg backend.ChatMessage) {
	_, span := o.tracer.Start(ctx, "tool_resolution")
	defer span.End()

	now := time.Now()
	assistant := session.Message{
		Role:      session.RoleAssistant,
		Content:   msg.Content,
		ToolCalls: make([]session.ToolCall, len(msg.ToolCalls)),
		Timestamp: now,
	}

	results := make([]session.Message, 0, len(msg.ToolCalls))
	for i, wc := range msg.ToolCalls {
		call := session.ToolCall{
			ID:        wc.ID,
			Name:      wc.Function.Name,
			Arguments: wc.Function.Arguments,
		}
		assistant.ToolCalls[i] = call

		content, err := o.tools.Dispatch(call)
		if err != nil {
			o.logger.Warn("tool dispatch failed", "tool", call.Name, "id", call.ID, "error", err)
			payload, merr := json.Marshal(map[string]string{"error": err.Error()})
			if merr != nil {
				payload = []byte(fmt.Sprintf(`{"error": %q}`, err.Error()))
			}
			content = string(payload)
		} else {
			o.logger.Info("dispatched tool", "tool", call.Name, "id", call.ID)
		}

		results = append(results, session.Message{
			Role:       session.RoleTool,
			Content:    content,
			ToolCallID: call.ID,
			Timestamp:  now,
		})
	}

	sess.AppendToolExchange(assistant, results...)
}

// apologize converts a service failure into the terminal user-visible reply.
func (o *Orchestrator) apologize(sess *session.Session, err error) string {
	o.logger.Error("model call failed", "error", err)
	reply := fmt.Sprintf("Sorry, something went wrong: %v", err)
	sess.AppendAssistant(reply)
	return reply
}

// toWire converts transcript messages to the chat completions wire format.
func toWire(transcript []session.Message) []backend.ChatMessage {
	wire := make([]backend.ChatMessage, len(transcript))
	for i, msg := range transcript {
		wm := backend.ChatMessage{
			Role:       msg.Role,
			Content:    msg.Content,
			ToolCallID: msg.ToolCallID,
		}
		for _, call := range msg.ToolCalls {
			wm.ToolCalls = append(wm.ToolCalls, backend.ToolCall{
				ID:   call.ID,
				Type: "function",
				Function: backend.FunctionCall{
					Name:      call.Name,
					Arguments: call.Arguments,
				},
			})
		}
		wire[i] = wm
	}
	return wire
}
