// Package bridge exposes the translation engine to the browser side. The
// same Handler serves two transports: Chrome native messaging over
// stdin/stdout (Host) and a loopback HTTP API (NewRouter).
package bridge

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/minios-linux/eztranslate/i18n"
	"github.com/minios-linux/eztranslate/translate"
)

// TypeTranslate is the only message type the handler accepts.
const TypeTranslate = "translate"

// Message is an inbound request.
type Message struct {
	Type                 string `json:"type"`
	ID                   string `json:"id,omitempty"`
	Text                 string `json:"text"`
	TargetLanguage       string `json:"targetLanguage,omitempty"`
	SecondTargetLanguage string `json:"secondTargetLanguage,omitempty"`
}

// Reply carries either a translation or an error string.
type Reply struct {
	ID          string `json:"id,omitempty"`
	Translation string `json:"translation,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Translator is the engine surface the handler needs.
// *translate.Translator implements it.
type Translator interface {
	Translate(ctx context.Context, req translate.Request) (string, error)
}

// Handler turns messages into replies. It never panics and never returns
// an error: every failure becomes Reply.Error.
type Handler struct {
	tr     Translator
	logger *zap.Logger
}

// NewHandler creates a handler.
func NewHandler(tr Translator, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{tr: tr, logger: logger.With(zap.String("component", "bridge"))}
}

// Handle processes one message.
func (h *Handler) Handle(ctx context.Context, msg Message) (reply Reply) {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	reply.ID = msg.ID
	log := h.logger.With(zap.String("id", msg.ID))

	defer func() {
		if r := recover(); r != nil {
			log.Error("handler panic", zap.Any("panic", r), zap.Stack("stack"))
			reply = Reply{ID: msg.ID, Error: i18n.Tf("Translation failed: %s", fmt.Sprint(r))}
		}
	}()

	if msg.Type != TypeTranslate {
		log.Warn("unsupported message type", zap.String("type", msg.Type))
		reply.Error = i18n.Tf("Unsupported message type: %s", msg.Type)
		return reply
	}

	text, err := h.tr.Translate(ctx, translate.Request{
		Text:            msg.Text,
		PrimaryTarget:   msg.TargetLanguage,
		SecondaryTarget: msg.SecondTargetLanguage,
	})
	if err != nil {
		reply.Error = ErrorText(err)
		log.Info("translate request failed",
			zap.Stringer("kind", translate.KindOf(err)),
			zap.Error(err))
		return reply
	}
	reply.Translation = text
	return reply
}

// ErrorText renders err for the user. Configuration problems are shown
// as they are; everything else is prefixed with "Translation failed: ".
func ErrorText(err error) string {
	if translate.KindOf(err).Config() {
		return err.Error()
	}
	return i18n.Tf("Translation failed: %s", err.Error())
}
