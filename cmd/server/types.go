package main

import (
	"github.com/gin-gonic/gin"
	gsessions "github.com/gorilla/sessions"

	"github.com/AndreySuncov/bot-exam/internal/config"
	"github.com/AndreySuncov/bot-exam/internal/retriever"
	"github.com/AndreySuncov/bot-exam/internal/sessions"
	"github.com/AndreySuncov/bot-exam/internal/shell"
	"github.com/AndreySuncov/bot-exam/internal/storage"
	ws "github.com/AndreySuncov/bot-exam/internal/websocket"
)

// holds all dependencies and state for the API server
type Server struct {
	db          *storage.Client // nil unless the corpus comes from postgres
	config      *config.Config
	knowledge   *retriever.Knowledge
	sessionMgr  *sessions.Manager
	cookieStore *gsessions.CookieStore
	services    *Services
	hub         *ws.Hub
	router      *gin.Engine
}

// holds the clients that answer messages
type Services struct {
	Retriever *retriever.Client
	Shell     *shell.Shell
}
