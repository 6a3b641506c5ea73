package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/AndreySuncov/bot-exam/internal/errors"
	"github.com/AndreySuncov/bot-exam/internal/logger"
	"github.com/AndreySuncov/bot-exam/internal/shell"
)

// answers chat messages through the shell, one reply frame per chunk
func ChatHandler(chatter Chatter) MessageHandler {
	return func(ctx context.Context, _ *Hub, client *Client, msg *Message) error {
		var payload ChatMessagePayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			client.SendError(errors.CodeBadRequest, ErrInvalidMessage.Error())
			return nil
		}

		if utf8.RuneCountInString(payload.Message) > maxChatMessageSize {
			client.SendError(errors.CodeValidationError, ErrMessageTooLarge.Error())
			return nil
		}

		if !client.checkChatRateLimit() {
			logger.Warn("chat rate limit exceeded", "client_id", client.ID)
			client.SendError(errors.CodeTooManyRequests, ErrRateLimitExceeded.Error())
			return nil
		}

		reply, err := chatter.Handle(ctx, client.ConversationID, payload.Message)
		if err != nil {
			return fmt.Errorf("failed to handle chat message: %w", err)
		}

		return sendReply(client, reply)
	}
}

// starts the conversation over, as /start does
func ResetHandler(chatter Chatter) MessageHandler {
	return func(_ context.Context, _ *Hub, client *Client, _ *Message) error {
		reply, err := chatter.Reset(client.ConversationID)
		if err != nil {
			return fmt.Errorf("failed to reset conversation: %w", err)
		}

		return sendReply(client, reply)
	}
}

// handles ping messages from clients (keep-alive)
func PingHandler() MessageHandler {
	return func(_ context.Context, _ *Hub, client *Client, _ *Message) error {
		pongMsg, err := NewMessage(TypePong, client.ConversationID, nil)
		if err != nil {
			return err
		}

		client.Send(pongMsg) //nolint:errcheck,gosec // best-effort pong
		return nil
	}
}

func sendReply(client *Client, reply shell.Reply) error {
	parts := len(reply.Messages)

	for i, text := range reply.Messages {
		payload := ReplyPayload{
			Text:    text,
			Part:    i + 1,
			Parts:   parts,
			State:   string(reply.State),
			Program: string(reply.Program),
		}

		// options ride on the last chunk
		if i == parts-1 {
			payload.Options = reply.Options
		}

		replyMsg, err := NewMessage(TypeReply, client.ConversationID, payload)
		if err != nil {
			return err
		}

		if err := client.Send(replyMsg); err != nil {
			return err
		}
	}

	return nil
}
