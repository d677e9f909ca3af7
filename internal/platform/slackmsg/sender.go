package slackmsg

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/slack-go/slack"
)

// uploader is the slice of the slack client the sender uses.
type uploader interface {
	UploadFileContext(ctx context.Context, params slack.FileUploadParameters) (*slack.File, error)
	UploadFileV2Context(ctx context.Context, params slack.UploadFileV2Parameters) (*slack.FileSummary, error)
}

// Sender delivers files to Slack channels. The upload method generation is
// fixed at construction from Config.Method.
type Sender struct {
	api    uploader
	method MethodVersion
}

func NewSender(cfg Config) (*Sender, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts := []slack.Option{
		slack.OptionHTTPClient(&http.Client{Timeout: cfg.Timeout}),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, slack.OptionAPIURL(cfg.BaseURL))
	}
	return &Sender{api: slack.New(cfg.Token, opts...), method: cfg.Method}, nil
}

func newSenderWithAPI(api uploader, method MethodVersion) *Sender {
	return &Sender{api: api, method: method}
}

// SendFile uploads the file at path to the given channels. filename, comment
// and title pass through to the API unmodified. An empty channel list shares
// the file with the workspace only.
func (s *Sender) SendFile(ctx context.Context, channels []string, path, filename, comment, title string) error {
	if s == nil || s.api == nil {
		return fmt.Errorf("slack sender not initialized")
	}
	switch s.method {
	case MethodV1:
		return s.sendFileV1(ctx, channels, path, filename, comment, title)
	case MethodV2:
		return s.sendFileV2(ctx, channels, path, filename, comment, title)
	default:
		return fmt.Errorf("invalid upload method version %q", s.method)
	}
}

func (s *Sender) sendFileV1(ctx context.Context, channels []string, path, filename, comment, title string) error {
	_, err := s.api.UploadFileContext(ctx, slack.FileUploadParameters{
		File:           path,
		Filename:       filename,
		Title:          title,
		InitialComment: comment,
		Channels:       channels,
	})
	if err != nil {
		return fmt.Errorf("upload file %q: %w", filename, err)
	}
	return nil
}

// The v2 API takes one channel per call and needs the exact file size, so a
// multi-channel delivery becomes one upload per channel.
func (s *Sender) sendFileV2(ctx context.Context, channels []string, path, filename, comment, title string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if len(channels) == 0 {
		channels = []string{""}
	}
	for _, channel := range channels {
		_, err := s.api.UploadFileV2Context(ctx, slack.UploadFileV2Parameters{
			File:           path,
			FileSize:       int(info.Size()),
			Filename:       filename,
			Title:          title,
			InitialComment: comment,
			Channel:        channel,
		})
		if err != nil {
			return fmt.Errorf("upload file %q to channel %q: %w", filename, channel, err)
		}
	}
	return nil
}
