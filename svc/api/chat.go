package api

import (
	"context"
	"net/http"

	"github.com/moodmoney/quota/pkg/auth"
	"github.com/moodmoney/quota/pkg/openai"
	"github.com/moodmoney/quota/pkg/plans"
	"github.com/moodmoney/quota/pkg/response"
)

const assistantPrompt = `You are a personal finance assistant inside a budgeting app.
Answer questions about spending, budgets and saving in plain language.
Keep answers short and practical. Do not give investment or tax advice.`

type chatMessage struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required,max=4000"`
}

type chatRequest struct {
	Messages []chatMessage `json:"messages" validate:"required,min=1,max=20,dive"`
}

type chatReply struct {
	Reply        string `json:"reply"`
	Model        string `json:"model"`
	FinishReason string `json:"finishReason"`
}

func (a *api) chat(w http.ResponseWriter, r *http.Request) {
	if a.Chat == nil {
		unavailableHandler(w, r)
		return
	}

	var req chatRequest
	if err := bind(w, r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	if last := req.Messages[len(req.Messages)-1]; last.Role != "user" {
		verr := response.ValidationError{}
		verr.Add("messages", "must end with a user message")
		a.fail(w, r, verr)
		return
	}

	msgs := make([]openai.Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		msgs = append(msgs, openai.Message{Role: m.Role, Content: m.Content})
	}

	var reply *openai.ChatResponse
	out, err := a.Gate.Run(r.Context(), auth.UserIDFromContext(r.Context()), plans.FeatureAIChat, func(ctx context.Context) error {
		resp, err := a.Chat.Chat(ctx, openai.ChatRequest{System: assistantPrompt, Messages: msgs})
		if err != nil {
			return err
		}
		reply = resp
		return nil
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	response.JSONWithMeta(w, http.StatusOK, chatReply{
		Reply:        reply.Content,
		Model:        reply.Model,
		FinishReason: reply.FinishReason,
	}, usageMeta(out))
}
