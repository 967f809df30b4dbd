package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/sync/errgroup"

	"fourcut-ai/internal/gemini"
	"fourcut-ai/internal/mediagroup"
	"fourcut-ai/internal/prompt"
	"fourcut-ai/internal/session"
	"fourcut-ai/internal/shots"
	"fourcut-ai/internal/telegram"
)

// Runner is the batch entrypoint. Implemented by shots.Orchestrator.
type Runner interface {
	Run(ctx context.Context, refs []gemini.ImageInput, scenes []shots.Scene, build, fallback shots.PromptBuilder) shots.BatchResult
}

type Options struct {
	Telegram *telegram.Client
	Runner   Runner
	Sessions *session.Store
	Logger   *slog.Logger
}

type Handler struct {
	tg         *telegram.Client
	runner     Runner
	sessions   *session.Store
	logger     *slog.Logger
	aggregator *mediagroup.Aggregator
}

func New(opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		tg:       opts.Telegram,
		runner:   opts.Runner,
		sessions: opts.Sessions,
		logger:   logger,
	}
}

func (h *Handler) SetMediaGroupAggregator(ag *mediagroup.Aggregator) {
	h.aggregator = ag
}

func (h *Handler) HandleUpdate(ctx context.Context, update telegram.Update) error {
	if update.Message == nil {
		return nil
	}

	msg := update.Message
	chatID := msg.Chat.ID
	userID := msg.From.ID
	username := msg.From.UserName

	if msg.IsCommand() {
		return h.handleCommand(ctx, chatID, userID, username, msg)
	}

	if len(msg.Photo) > 0 {
		return h.handlePhoto(ctx, chatID, userID, username, msg)
	}

	if msg.Text != "" {
		return h.tg.SendText(chatID, "Send me selfies, then /billgates or /joker to make a four-shot.")
	}

	return nil
}

// HandleMediaGroup runs after the aggregator has collected a whole album.
func (h *Handler) HandleMediaGroup(ctx context.Context, group mediagroup.Group) {
	selfies := make([]gemini.ImageInput, 0, len(group.FileIDs))
	for _, fileID := range group.FileIDs {
		data, mimeType, err := h.tg.DownloadPhoto(ctx, fileID)
		if err != nil {
			h.logger.Error("album download failed", "err", err)
			continue
		}
		selfies = append(selfies, gemini.ImageInput{Data: data, MimeType: mimeType})
	}

	if len(selfies) == 0 {
		_ = h.tg.SendText(group.ChatID, "❌ Couldn't read those photos, try sending them again.")
		return
	}

	count := h.sessions.Add(group.UserID, group.Username, selfies...)
	_ = h.tg.SendText(group.ChatID, fmt.Sprintf("📸 %d selfie(s) saved. Now send /billgates or /joker.", count))
}

func (h *Handler) handleCommand(ctx context.Context, chatID, userID int64, username string, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start":
		return h.tg.SendText(chatID,
			"🤖 AI Photo Booth\n\n"+
				"Send one or more selfies, then pick a character:\n"+
				"/billgates - four shots with Bill Gates around Korea\n"+
				"/joker - four shots between the two Jokers in Gotham\n"+
				"/clear - forget your uploaded selfies\n"+
				"/help - this message",
		)
	case "help":
		return h.tg.SendText(chatID,
			"Send selfies (albums work too), then /billgates or /joker.\n"+
				"Add \"safe\" after /billgates to use a look-alike from the start.\n"+
				"/clear forgets your uploads. Selfies are kept in memory only.",
		)
	case "clear":
		h.sessions.Clear(userID)
		return h.tg.SendText(chatID, "✅ Selfies forgotten.")
	case "billgates", "joker":
		character, ok := prompt.CharacterByKey(msg.Command())
		if !ok {
			return h.tg.SendText(chatID, "❌ Unknown character.")
		}
		exact := !strings.EqualFold(strings.TrimSpace(msg.CommandArguments()), "safe")
		return h.runBatch(ctx, chatID, userID, username, character, exact)
	default:
		return h.tg.SendText(chatID, "❌ Unknown command, see /help.")
	}
}

func (h *Handler) handlePhoto(ctx context.Context, chatID, userID int64, username string, msg *tgbotapi.Message) error {
	// Largest size is last.
	fileID := msg.Photo[len(msg.Photo)-1].FileID

	if msg.MediaGroupID != "" && h.aggregator != nil {
		h.aggregator.Add(mediagroup.Item{
			ChatID:       chatID,
			UserID:       userID,
			Username:     username,
			MediaGroupID: msg.MediaGroupID,
			FileID:       fileID,
		})
		return nil
	}

	data, mimeType, err := h.tg.DownloadPhoto(ctx, fileID)
	if err != nil {
		h.logger.Error("photo download failed", "err", err)
		return h.tg.SendText(chatID, "❌ Couldn't read that photo, try again.")
	}

	count := h.sessions.Add(userID, username, gemini.ImageInput{Data: data, MimeType: mimeType})
	return h.tg.SendText(chatID, fmt.Sprintf("📸 %d selfie(s) saved. Now send /billgates or /joker.", count))
}

func (h *Handler) runBatch(ctx context.Context, chatID, userID int64, username string, character prompt.Character, exact bool) error {
	selfies := h.sessions.Snapshot(userID, username)
	if len(selfies) == 0 {
		return h.tg.SendText(chatID, "❌ Send at least one selfie first.")
	}

	h.tg.SendUploadingPhoto(chatID)
	_ = h.tg.SendText(chatID, fmt.Sprintf("%s Generating %d shots with %s, hang on...",
		character.Emoji, len(character.Scenes), character.Name))

	build, fallback := prompt.Builders(character, exact)
	result := h.runner.Run(ctx, selfies, character.Scenes, build, fallback)

	g := new(errgroup.Group)
	for _, artifact := range result.Artifacts {
		artifact := artifact
		g.Go(func() error {
			return h.tg.SendPhoto(chatID, artifact.Data, artifact.SceneLabel)
		})
	}
	if err := g.Wait(); err != nil {
		h.logger.Error("sending shots failed", "err", err)
	}

	if len(result.Failures) > 0 {
		var b strings.Builder
		b.WriteString("⚠️ Some shots failed:\n")
		for _, f := range result.Failures {
			fmt.Fprintf(&b, "• %s: %s\n", f.SceneLabel, f.Message)
		}
		return h.tg.SendText(chatID, b.String())
	}

	return nil
}
