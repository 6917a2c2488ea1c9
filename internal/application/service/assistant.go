package service

import (
	"context"
	"strings"
	"time"

	"github.com/garyjia/hr-assistant/internal/application/port"
	"github.com/garyjia/hr-assistant/internal/classifier"
	"github.com/garyjia/hr-assistant/internal/domain/intent"
	"github.com/garyjia/hr-assistant/pkg/utils"
)

const msgUnsure = "Maaf, saya tidak yakin maksud Anda. Ketik 'help' untuk melihat contoh pertanyaan dan perintah."

// HelpText lists example questions and commands
const HelpText = `Contoh pertanyaan:
- siapa manajer Budi?
- sisa cuti sakit Rina berapa?
- apa jabatan Santi?
- status cuti Budi?
- riwayat cuti Budi
- daftar karyawan di departemen Engineering
- list cuti pending

Contoh perintah:
- ajukan cuti tahunan untuk Budi dari 2025-10-06 sampai 2025-10-08
- jadwalkan review Budi dengan reviewer Santi Jumat depan
- approve cuti LR003 / tolak cuti LR003 / batalkan cuti LR003
- tolong update sisa cuti tahunan Rina menjadi 10
- submit hasil review REV-001 dengan skor 85
- tolong buat data karyawan baru Dewi, email dewi@company.co.id, Engineer di Engineering, manajer Santi
- submit expense Budi transport 150000`

// Assistant routes an utterance to the query or action pipeline
type Assistant struct {
	extractor port.IntentExtractor
	queries   QueryService
	actions   ActionService
	now       func() time.Time
	logger    Logger
}

// NewAssistant creates a new Assistant
func NewAssistant(extractor port.IntentExtractor, queries QueryService, actions ActionService, logger Logger, opts ...Option) *Assistant {
	o := buildOptions(opts)
	return &Assistant{
		extractor: extractor,
		queries:   queries,
		actions:   actions,
		now:       o.now,
		logger:    logger,
	}
}

// Handle processes one utterance and always returns a display string
func (a *Assistant) Handle(ctx context.Context, utterance string) string {
	utterance = utils.SanitizeString(utterance)
	if utterance == "" {
		return msgUnsure
	}
	if isHelp(utterance) {
		return HelpText
	}

	kind := classifier.Classify(utterance)
	a.logger.Info("Utterance classified", "kind", kind.String())

	switch kind {
	case classifier.Question:
		return a.handleQuestion(ctx, utterance)
	case classifier.Command:
		return a.handleCommand(ctx, utterance)
	default:
		return msgUnsure
	}
}

func (a *Assistant) handleQuestion(ctx context.Context, question string) string {
	if isFastPathQuestion(question) {
		return a.queries.Answer(ctx, question)
	}

	in, err := a.extractor.Extract(ctx, question, a.now())
	if err != nil {
		a.logger.Info("Extraction unavailable, answering by keyword", "error", err)
		return a.queries.Answer(ctx, question)
	}
	if intent.IsQuery(in) {
		return a.queries.AnswerByIntent(ctx, in)
	}
	return a.queries.Answer(ctx, question)
}

func (a *Assistant) handleCommand(ctx context.Context, command string) string {
	in, err := a.extractor.Extract(ctx, command, a.now())
	if err != nil || in == nil {
		a.logger.Info("Command not understood", "command", command, "error", err)
		return msgNotUnderstood
	}
	if intent.IsQuery(in) {
		return a.queries.AnswerByIntent(ctx, in)
	}
	return a.actions.ExecuteIntent(ctx, in)
}

// isFastPathQuestion matches manager and leave-balance questions the keyword
// resolver answers without a model round trip
func isFastPathQuestion(question string) bool {
	q := strings.ToLower(question)
	if containsAny(q, whoWords) && containsAny(q, managerWords) {
		return true
	}
	return containsAny(q, []string{"sisa", "remaining", "balance"}) && containsAny(q, leaveWords)
}

func isHelp(utterance string) bool {
	switch strings.ToLower(utterance) {
	case "help", "bantuan", "?":
		return true
	}
	return false
}
