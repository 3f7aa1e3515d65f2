package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/lanternlabs/lantern/internal/api"
	"github.com/lanternlabs/lantern/internal/domain"
	"github.com/lanternlabs/lantern/internal/service"
)

type ChatService interface {
	ProcessMessage(ctx context.Context, input service.ChatInput) (*service.ChatResult, error)
}

type ChatHandler struct {
	svc ChatService
}

func NewChatHandler(svc ChatService) *ChatHandler {
	return &ChatHandler{svc: svc}
}

type ChatResponse struct {
	TextReply       string            `json:"text_reply"`
	UpdatedMessages []domain.ChatTurn `json:"updated_messages"`
}

// Message accepts one persona chat message as multipart form data. Text
// messages carry their content in the message_content value; audio and
// image messages carry the file itself in that part.
func (h *ChatHandler) Message(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	messageType := domain.ItemType(r.FormValue("message_type"))
	if !domain.IsValidItemType(messageType) {
		api.Error(w, http.StatusBadRequest, "invalid message type")
		return
	}

	settings, err := parseSettings(r.FormValue("settings"))
	if err != nil {
		api.Error(w, http.StatusBadRequest, "invalid settings field")
		return
	}

	var history []domain.ChatTurn
	if raw := r.FormValue("updated_messages"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &history); err != nil {
			api.Error(w, http.StatusBadRequest, "invalid updated_messages field")
			return
		}
	}

	input := service.ChatInput{
		WorkingMemory: r.FormValue("working_memory"),
		History:       history,
		Settings:      settings,
		MessageType:   messageType,
	}

	if messageType == domain.ItemTypeText {
		input.MessageText = r.FormValue("message_content")
	} else {
		file, header, err := r.FormFile("message_content")
		if err != nil {
			api.Error(w, http.StatusBadRequest, "message_content file is required")
			return
		}
		defer file.Close()

		input.Upload = &service.EntryUpload{
			FieldName:   "message_content",
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			SizeBytes:   header.Size,
			File:        file,
		}
	}

	result, err := h.svc.ProcessMessage(r.Context(), input)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusOK, ChatResponse{
		TextReply:       result.Reply,
		UpdatedMessages: result.History,
	})
}
