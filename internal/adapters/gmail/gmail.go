// Package gmail implements the mailbox adapter on the Gmail API. It reads
// the same credentials.json and token.json files produced by Google's
// oauth tooling, so existing tokens keep working.
package gmail

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/ewfx/gaied-aivengers/internal/config"
	"github.com/ewfx/gaied-aivengers/internal/core"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gm "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

var addressPattern = regexp.MustCompile(`<(.*?)>`)

// Mailbox implements core.EmailSource over the Gmail API.
type Mailbox struct {
	svc            *gm.Service
	logger         *zap.Logger
	labelIDs       []string
	query          string
	attachmentsDir string
}

// NewMailbox authenticates against Gmail and returns a mailbox adapter.
func NewMailbox(ctx context.Context, cfg config.GmailConfig, logger *zap.Logger) (*Mailbox, error) {
	svc, err := newService(ctx, cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}

	if err := os.MkdirAll(cfg.AttachmentsDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create attachments directory: %w", err)
	}

	labelIDs := cfg.LabelIDs
	if len(labelIDs) == 0 {
		labelIDs = []string{"INBOX"}
	}

	return &Mailbox{
		svc:            svc,
		logger:         logger,
		labelIDs:       labelIDs,
		query:          cfg.Query,
		attachmentsDir: cfg.AttachmentsDir,
	}, nil
}

// ListIDs returns up to max message IDs from the configured labels, in
// mailbox listing order, following pagination as needed. An optional Gmail
// search query (for example "after:2026/08/01") narrows the listing.
func (m *Mailbox) ListIDs(ctx context.Context, max int) ([]string, error) {
	var ids []string
	pageToken := ""

	for len(ids) < max {
		call := m.svc.Users.Messages.List("me").
			LabelIds(m.labelIDs...).
			MaxResults(int64(max - len(ids))).
			Context(ctx)
		if m.query != "" {
			call = call.Q(m.query)
		}
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		resp, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list messages: %w", err)
		}
		for _, msg := range resp.Messages {
			ids = append(ids, msg.Id)
		}

		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}

	if len(ids) > max {
		ids = ids[:max]
	}
	return ids, nil
}

// Fetch retrieves one message's metadata, body and attachments. Attachments
// are saved under the configured directory and referenced by path.
func (m *Mailbox) Fetch(ctx context.Context, id string) (*core.EmailRecord, error) {
	msg, err := m.svc.Users.Messages.Get("me", id).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get message %s: %w", id, err)
	}

	headers := headerMap(msg.Payload)

	record := &core.EmailRecord{
		ID:      id,
		Subject: defaultStr(headers["Subject"], "No Subject"),
		From:    extractAddress(defaultStr(headers["From"], "Unknown Sender")),
		Date:    defaultStr(headers["Date"], "Unknown Date"),
		Body:    strings.TrimSpace(extractBody(msg.Payload)),
		Snippet: msg.Snippet,
	}

	paths, err := m.saveAttachments(ctx, id, msg.Payload)
	if err != nil {
		// Attachment download failures leave the email usable with body only.
		m.logger.Warn("Failed to save attachments",
			zap.String("email_id", id),
			zap.Error(err))
	}
	record.Attachments = paths

	return record, nil
}

// saveAttachments downloads every named attachment part to disk and returns
// the saved paths in part order.
func (m *Mailbox) saveAttachments(ctx context.Context, messageID string, payload *gm.MessagePart) ([]string, error) {
	if payload == nil {
		return nil, nil
	}

	var paths []string
	for _, part := range payload.Parts {
		if part.Filename == "" || part.Body == nil || part.Body.AttachmentId == "" {
			continue
		}

		attachment, err := m.svc.Users.Messages.Attachments.
			Get("me", messageID, part.Body.AttachmentId).
			Context(ctx).
			Do()
		if err != nil {
			return paths, fmt.Errorf("failed to get attachment %s: %w", part.Filename, err)
		}

		data, err := base64.URLEncoding.DecodeString(attachment.Data)
		if err != nil {
			return paths, fmt.Errorf("failed to decode attachment %s: %w", part.Filename, err)
		}

		path := filepath.Join(m.attachmentsDir, filepath.Base(part.Filename))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return paths, fmt.Errorf("failed to write attachment %s: %w", part.Filename, err)
		}

		m.logger.Debug("Saved attachment",
			zap.String("email_id", messageID),
			zap.String("path", path))
		paths = append(paths, path)
	}
	return paths, nil
}

// extractBody walks the payload tree and returns the first text part,
// preferring text/plain over text/html.
func extractBody(payload *gm.MessagePart) string {
	if payload == nil {
		return ""
	}

	if payload.Body != nil && payload.Body.Data != "" &&
		(payload.MimeType == "text/plain" || payload.MimeType == "") {
		return decodePart(payload.Body.Data)
	}

	for _, part := range payload.Parts {
		if part.MimeType == "text/plain" && part.Body != nil && part.Body.Data != "" {
			return decodePart(part.Body.Data)
		}
	}
	for _, part := range payload.Parts {
		if part.MimeType == "text/html" && part.Body != nil && part.Body.Data != "" {
			return decodePart(part.Body.Data)
		}
	}
	for _, part := range payload.Parts {
		if len(part.Parts) > 0 {
			if body := extractBody(part); body != "" {
				return body
			}
		}
	}

	if payload.Body != nil && payload.Body.Data != "" {
		return decodePart(payload.Body.Data)
	}
	return ""
}

func decodePart(data string) string {
	decoded, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		return ""
	}
	return string(decoded)
}

func headerMap(payload *gm.MessagePart) map[string]string {
	headers := make(map[string]string)
	if payload == nil {
		return headers
	}
	for _, h := range payload.Headers {
		headers[h.Name] = h.Value
	}
	return headers
}

// extractAddress pulls the bare address out of a "Name <addr>" sender.
func extractAddress(sender string) string {
	if match := addressPattern.FindStringSubmatch(sender); match != nil {
		return match[1]
	}
	return sender
}

func defaultStr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// authorizedUserToken matches the token.json format written by Google's
// oauth client libraries.
type authorizedUserToken struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	Expiry       string `json:"expiry"`
}

func newService(ctx context.Context, credentialsFile string) (*gm.Service, error) {
	credBytes, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	oauthCfg, err := google.ConfigFromJSON(credBytes, gm.GmailReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse credentials: %w", err)
	}

	tokenPath := filepath.Join(filepath.Dir(credentialsFile), "token.json")
	token, err := loadToken(tokenPath)
	if err != nil {
		return nil, err
	}

	return gm.NewService(ctx, option.WithHTTPClient(oauthCfg.Client(ctx, token)))
}

func loadToken(path string) (*oauth2.Token, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	// Standard oauth2.Token JSON first.
	var token oauth2.Token
	if err := json.Unmarshal(raw, &token); err == nil && token.AccessToken != "" {
		return &token, nil
	}

	var authorized authorizedUserToken
	if err := json.Unmarshal(raw, &authorized); err != nil {
		return nil, fmt.Errorf("failed to parse token file: %w", err)
	}
	if authorized.Token == "" && authorized.RefreshToken == "" {
		return nil, fmt.Errorf("token file %s has no usable token", path)
	}

	token = oauth2.Token{
		AccessToken:  authorized.Token,
		RefreshToken: authorized.RefreshToken,
	}
	if authorized.Expiry != "" {
		if expiry, err := time.Parse(time.RFC3339, authorized.Expiry); err == nil {
			token.Expiry = expiry
		}
	}
	return &token, nil
}
