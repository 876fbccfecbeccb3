package handler

import (
	"blahbluh/internal/app/chat"
	"blahbluh/internal/app/pairing"
	"blahbluh/internal/configs"
)

type AppDeps struct {
	Service *pairing.Service
	Hub     *chat.Hub
	Config  *configs.AppConfig
}
