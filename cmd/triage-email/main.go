// The triage-email command runs the triage pipeline over a single RFC 5322
// message read from a file or stdin and prints the result as JSON. Useful
// for trying prompts and taxonomies without a mailbox.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/mail"
	"os"
	"strings"

	"github.com/ewfx/gaied-aivengers/internal/config"
	"github.com/ewfx/gaied-aivengers/internal/core"
	"github.com/ewfx/gaied-aivengers/internal/dedup"
	"github.com/ewfx/gaied-aivengers/internal/factory"
	"github.com/ewfx/gaied-aivengers/internal/logging"
	"github.com/ewfx/gaied-aivengers/internal/utils"
	"github.com/ewfx/gaied-aivengers/internal/vector"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	var (
		file        string
		attachments string
		verbose     bool
		jsonLogs    bool
	)
	flag.StringVar(&file, "file", "", "path to an RFC 5322 message (default stdin)")
	flag.StringVar(&attachments, "attachments", "", "comma-separated attachment paths")
	flag.BoolVar(&verbose, "verbose", false, "enable debug logging")
	flag.BoolVar(&jsonLogs, "json", false, "log in JSON format")
	flag.Parse()

	_ = godotenv.Load()

	logger, err := logging.InitConsoleLogger(verbose, jsonLogs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(file, attachments, logger); err != nil {
		logger.Fatal("Triage failed", zap.Error(err))
	}
}

func run(file, attachments string, logger *zap.Logger) error {
	email, err := readEmail(file)
	if err != nil {
		return err
	}
	if attachments != "" {
		email.Attachments = strings.Split(attachments, ",")
	}

	cfg, err := config.New()
	if err != nil {
		return err
	}

	service, err := buildService(cfg, logger)
	if err != nil {
		return err
	}

	result, err := service.Process(context.Background(), email)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

// buildService wires the pipeline directly; a one-shot run has no mailbox,
// no processed-ID store and no review surface.
func buildService(cfg *config.Config, logger *zap.Logger) (*core.TriageService, error) {
	textProcessor := utils.NewTextProcessor(logger)
	f := factory.NewFactory(cfg, logger, textProcessor)

	reasoner, err := f.CreateReasoningClient()
	if err != nil {
		return nil, err
	}
	encoder, err := f.CreateEmbedder()
	if err != nil {
		return nil, err
	}

	mapping := cfg.GetTaxonomy()
	if mapping == nil {
		mapping = core.DefaultTaxonomy()
	}
	taxonomy, err := core.NewRequestTaxonomy(mapping)
	if err != nil {
		return nil, err
	}

	dedupCfg := cfg.GetDedup()
	store := vector.NewSessionStore(encoder.Dimensions())
	detector := dedup.NewDetector(encoder, store, logger, dedupCfg.Threshold, dedupCfg.MaxCandidates)

	return core.NewTriageService(
		reasoner,
		detector,
		f.CreateDocumentExtractor(),
		taxonomy,
		logger,
		cfg.GetLLM().DuplicateReasoning,
	), nil
}

func readEmail(file string) (*core.EmailRecord, error) {
	var reader io.Reader = os.Stdin
	id := "stdin"
	if file != "" {
		fh, err := os.Open(file)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", file, err)
		}
		defer fh.Close()
		reader = fh
		id = file
	}

	msg, err := mail.ReadMessage(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	body, err := io.ReadAll(msg.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read message body: %w", err)
	}

	sender := msg.Header.Get("From")
	if addr, err := mail.ParseAddress(sender); err == nil {
		sender = addr.Address
	}

	return &core.EmailRecord{
		ID:      id,
		Subject: msg.Header.Get("Subject"),
		From:    sender,
		Date:    msg.Header.Get("Date"),
		Body:    strings.TrimSpace(string(body)),
	}, nil
}
