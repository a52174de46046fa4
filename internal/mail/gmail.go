package mail

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// Gmail reads the mailbox with an installed-app OAuth client. The token file is
// produced by an out-of-band authorization; until it exists every call returns
// ErrNotAuthorized.
type Gmail struct {
	credentialsFile string
	tokenFile       string

	mu  sync.Mutex
	svc *gmail.Service
}

func NewGmail(credentialsFile, tokenFile string) *Gmail {
	return &Gmail{credentialsFile: credentialsFile, tokenFile: tokenFile}
}

func (g *Gmail) service(ctx context.Context) (*gmail.Service, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.svc != nil {
		return g.svc, nil
	}

	tok, err := loadToken(g.tokenFile)
	if err != nil {
		return nil, err
	}

	secret, err := os.ReadFile(g.credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("gmail: read credentials: %w", err)
	}
	cfg, err := google.ConfigFromJSON(secret, gmail.GmailReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("gmail: parse credentials: %w", err)
	}

	// The token source outlives any single request.
	client := cfg.Client(context.Background(), tok)
	svc, err := gmail.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("gmail: create service: %w", err)
	}
	g.svc = svc
	return svc, nil
}

func loadToken(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotAuthorized
		}
		return nil, fmt.Errorf("gmail: open token: %w", err)
	}
	defer f.Close()

	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, fmt.Errorf("gmail: decode token: %w", err)
	}
	return tok, nil
}

func (g *Gmail) ListIDs(ctx context.Context, query string, max int64) ([]string, error) {
	svc, err := g.service(ctx)
	if err != nil {
		return nil, err
	}

	res, err := svc.Users.Messages.List("me").Q(query).MaxResults(max).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("gmail: list messages: %w", err)
	}

	ids := make([]string, 0, len(res.Messages))
	for _, m := range res.Messages {
		ids = append(ids, m.Id)
	}
	return ids, nil
}

func (g *Gmail) Get(ctx context.Context, id string) (Message, error) {
	svc, err := g.service(ctx)
	if err != nil {
		return Message{}, err
	}

	msg, err := svc.Users.Messages.Get("me", id).
		Format("metadata").
		MetadataHeaders("Subject", "From", "Date").
		Context(ctx).
		Do()
	if err != nil {
		return Message{}, fmt.Errorf("gmail: get message %s: %w", id, err)
	}

	out := Message{ID: id, Snippet: msg.Snippet}
	if msg.Payload != nil {
		out.Subject = header(msg.Payload.Headers, "Subject")
		out.From = header(msg.Payload.Headers, "From")
		out.Date = header(msg.Payload.Headers, "Date")
	}
	return out, nil
}

func header(headers []*gmail.MessagePartHeader, name string) string {
	for _, h := range headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}
