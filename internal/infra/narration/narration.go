package narration

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/yanqian/tempcast/internal/domain/outlook"
	"github.com/yanqian/tempcast/internal/infra/llm/openai"
)

// LogNarrator writes each line to the structured log.
type LogNarrator struct {
	logger *slog.Logger
}

// NewLogNarrator builds the default narrator.
func NewLogNarrator(logger *slog.Logger) *LogNarrator {
	return &LogNarrator{logger: logger.With("component", "narration.log")}
}

func (n *LogNarrator) Narrate(_ context.Context, text string) error {
	n.logger.Info("narration", "text", text)
	return nil
}

// MessageSender is the subset of *tgbotapi.BotAPI used for narration.
type MessageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNarrator relays each line to a Telegram chat.
type TelegramNarrator struct {
	sender MessageSender
	chatID int64
}

// NewTelegramNarrator sends lines to chatID through sender.
func NewTelegramNarrator(sender MessageSender, chatID int64) *TelegramNarrator {
	return &TelegramNarrator{sender: sender, chatID: chatID}
}

func (n *TelegramNarrator) Narrate(_ context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if _, err := n.sender.Send(tgbotapi.NewMessage(n.chatID, text)); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	return nil
}

// Synthesizer turns text into audio.
type Synthesizer interface {
	CreateSpeech(ctx context.Context, req openai.SpeechRequest) ([]byte, error)
}

// SpeechNarrator renders each line to audio and archives it as an mp3.
type SpeechNarrator struct {
	synth   Synthesizer
	archive outlook.CurveArchive
	model   string
	voice   string
	logger  *slog.Logger
	now     func() time.Time

	mu  sync.Mutex
	seq int
}

// NewSpeechNarrator builds a narrator backed by the speech endpoint.
func NewSpeechNarrator(synth Synthesizer, archive outlook.CurveArchive, model, voice string, logger *slog.Logger) *SpeechNarrator {
	return &SpeechNarrator{
		synth:   synth,
		archive: archive,
		model:   model,
		voice:   voice,
		logger:  logger.With("component", "narration.speech"),
		now:     time.Now,
	}
}

func (n *SpeechNarrator) Narrate(ctx context.Context, text string) error {
	audio, err := n.synth.CreateSpeech(ctx, openai.SpeechRequest{Model: n.model, Voice: n.voice, Input: text})
	if err != nil {
		return fmt.Errorf("synthesize speech: %w", err)
	}
	key := n.nextKey()
	stored, err := n.archive.Put(ctx, key, audio, "audio/mpeg")
	if err != nil {
		return fmt.Errorf("archive speech: %w", err)
	}
	n.logger.Info("narration audio stored", "key", stored, "bytes", len(audio))
	return nil
}

func (n *SpeechNarrator) nextKey() string {
	n.mu.Lock()
	n.seq++
	seq := n.seq
	n.mu.Unlock()
	now := n.now().UTC()
	return fmt.Sprintf("narration/%s/%s-%03d.mp3", now.Format("2006-01-02"), now.Format("150405"), seq)
}

var (
	_ outlook.Narrator = (*LogNarrator)(nil)
	_ outlook.Narrator = (*TelegramNarrator)(nil)
	_ outlook.Narrator = (*SpeechNarrator)(nil)
	_ MessageSender    = (*tgbotapi.BotAPI)(nil)
)
