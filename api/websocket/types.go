package websocket

type ConnectParams struct {
	// resumes an existing conversation; a new one is started when empty
	ConversationID string `form:"conversation_id" binding:"max=100"`
}
