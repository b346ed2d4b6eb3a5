package wsrouter

import "context"

type ctxKey int

const messageTypeKey ctxKey = iota

func withMessageType(ctx context.Context, messageType string) context.Context {
	return context.WithValue(ctx, messageTypeKey, messageType)
}

// GetMessageTypeFromCtx returns the envelope type of the message currently
// being handled, or an empty string outside a handler.
func GetMessageTypeFromCtx(ctx context.Context) string {
	messageType, _ := ctx.Value(messageTypeKey).(string)
	return messageType
}
