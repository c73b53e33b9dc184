package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/emersion/go-vcard"
	"github.com/tartampluch/go-wedding/internal/config"
	"github.com/tartampluch/go-wedding/internal/model"
)

// ImportSource tells the importer where the address book lives.
type ImportSource struct {
	Mode      string // config.SourceModeLocal or config.SourceModeWeb
	LocalPath string // path to a .vcf file
	WebURL    string // CardDAV or WebDAV URL
	WebUser   string // HTTP Basic Auth username
	WebPass   string // HTTP Basic Auth password
}

// GuestImporter turns an address book into guest drafts. Drafts carry no
// server id; they become guests once the server confirms them.
type GuestImporter struct {
	Fetcher VCardFetcher
}

// Import reads every card of the source. Cards without a usable name are
// skipped, as are cards the decoder cannot read.
func (g *GuestImporter) Import(ctx context.Context, src ImportSource) ([]model.Guest, error) {
	log := slog.With(
		config.LogKeyComponent, config.CompImport,
		config.LogKeyMode, src.Mode,
	)
	log.InfoContext(ctx, config.MsgImportStarted)

	reader, err := g.open(ctx, src)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%s: %w", config.ErrVCardParse, err)
	}
	defer func() { _ = reader.Close() }()

	guests, skipped, err := ParseGuests(ctx, reader)
	if err != nil {
		return nil, err
	}
	log.Info(config.MsgImportDone,
		config.LogKeyTotal, len(guests),
		config.LogKeySkipped, skipped)
	return guests, nil
}

func (g *GuestImporter) open(ctx context.Context, src ImportSource) (io.ReadCloser, error) {
	switch src.Mode {
	case config.SourceModeLocal:
		if src.LocalPath == "" {
			return nil, errors.New(config.ErrLocalPathEmpty)
		}
		return os.Open(src.LocalPath)
	case config.SourceModeWeb:
		if src.WebURL == "" {
			return nil, errors.New(config.ErrWebURLEmpty)
		}
		if g.Fetcher == nil {
			return nil, errors.New(config.ErrFetcherMissing)
		}
		return g.Fetcher.Fetch(ctx, src.WebURL, src.WebUser, src.WebPass)
	default:
		return nil, fmt.Errorf("%s: %q", config.ErrModeUnsupport, src.Mode)
	}
}

// ParseGuests decodes a vCard stream into guest drafts with a pending answer
// and a party of one. It returns the number of skipped cards.
func ParseGuests(ctx context.Context, r io.Reader) ([]model.Guest, int, error) {
	decoder := vcard.NewDecoder(r)
	var (
		guests  []model.Guest
		skipped int
	)
	for {
		if err := ctx.Err(); err != nil {
			return nil, skipped, err
		}

		card, err := decoder.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			slog.Warn(config.MsgUndecodableCard,
				config.LogKeyComponent, config.CompImport,
				config.LogKeyError, err)
			skipped++
			continue
		}

		name := cardName(card)
		if name == "" {
			skipped++
			continue
		}

		guest := model.Guest{
			FullName:   name,
			Attendance: model.AttendanceMaybe,
			GuestCount: 1,
			Phone:      card.PreferredValue(vcard.FieldTelephone),
		}
		if cats := card.Categories(); len(cats) > 0 {
			guest.Group = cats[0]
		}
		guests = append(guests, guest)
	}
	return guests, skipped, nil
}

// cardName prefers FN and falls back on the structured N field.
func cardName(card vcard.Card) string {
	if fn := strings.TrimSpace(card.PreferredValue(vcard.FieldFormattedName)); fn != "" {
		return fn
	}
	if n := card.Name(); n != nil {
		parts := []string{n.HonorificPrefix, n.GivenName, n.AdditionalName, n.FamilyName, n.HonorificSuffix}
		return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
	}
	return ""
}
