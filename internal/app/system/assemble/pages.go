package assemble

import (
	"context"
	"strings"

	"github.com/dalemusser/stratasite/internal/app/store/content"
	"github.com/dalemusser/stratasite/internal/domain/models"
	"github.com/dalemusser/stratasite/internal/domain/schema"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// PageView is a routable page with its resolved page builder blocks.
type PageView struct {
	ID              string
	Type            string
	Title           string
	Description     string
	Slug            string
	URL             string
	MetaTitle       string
	MetaDescription string
	Blocks          []BlockView
}

// BlockView is one resolved page builder block. Exactly one of the
// typed fields is set, matching Type.
type BlockView struct {
	Key  string
	Type string

	EventsList    *EventsListView
	FeaturedEvent *FeaturedEventView
	FileDownload  *FileDownloadView
}

// EventsListView is an events list block with its events.
type EventsListView struct {
	Key         string
	Title       string
	Description string
	ShowPast    bool
	Events      []EventView
}

// FileDownloadView is a file download block with its asset resolved.
type FileDownloadView struct {
	Key         string
	Title       string
	Description string
	ButtonText  string
	Filename    string
	URL         string
	Size        string
	Extension   string
	Icon        string
	ShowSize    bool
	ShowType    bool
	Available   bool
}

// Page resolves the page at /<slug>.
func (a *Assembler) Page(ctx context.Context, slug string) (PageView, bool, error) {
	return a.pageBySlug(ctx, models.TypePage, slug)
}

// Service resolves the service page at /services/<slug>.
func (a *Assembler) Service(ctx context.Context, slug string) (PageView, bool, error) {
	return a.pageBySlug(ctx, models.TypeService, slug)
}

// Home resolves the home page singleton.
func (a *Assembler) Home(ctx context.Context) (PageView, bool, error) {
	d, found, err := a.client.ByID(ctx, models.TypeHomePage, models.TypeHomePage)
	if err != nil || !found {
		return PageView{}, false, err
	}
	return a.pageView(ctx, d)
}

func (a *Assembler) pageBySlug(ctx context.Context, docType, slug string) (PageView, bool, error) {
	d, found, err := a.bySlug(ctx, docType, slug, models.PageFields)
	if err != nil || !found {
		return PageView{}, false, err
	}
	return a.pageView(ctx, d)
}

func (a *Assembler) pageView(ctx context.Context, d models.Document) (PageView, bool, error) {
	var p models.Page
	if err := d.Decode(&p); err != nil {
		return PageView{}, false, err
	}
	v := PageView{
		ID:              models.PublishedID(p.ID),
		Type:            p.Type,
		Title:           p.Title,
		Description:     p.Description,
		Slug:            p.Slug.Current,
		URL:             models.URLFor(p.Type, p.Slug.Current),
		MetaTitle:       firstNonEmpty(p.SEOTitle, p.Title),
		MetaDescription: firstNonEmpty(p.SEODescription, p.Description),
	}
	blocks, err := a.ResolveBlocks(ctx, p.PageBuilder)
	if err != nil {
		return PageView{}, false, err
	}
	v.Blocks = blocks
	return v, true, nil
}

// ResolveBlocks resolves page builder blocks concurrently and returns them
// in their original order. Blocks that resolve to nothing (an unknown
// type, a dangling featured event) are dropped. A block whose query
// fails, including a store-side timeout, is logged and dropped; only the
// end of ctx itself fails the page.
func (a *Assembler) ResolveBlocks(ctx context.Context, blocks []models.Document) ([]BlockView, error) {
	out := make([]*BlockView, len(blocks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.blockLimit)
	for i, raw := range blocks {
		g.Go(func() error {
			bv, err := a.resolveBlock(gctx, raw)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				a.logger.Warn("page builder block failed to resolve",
					zap.String("block", keyOf(raw)),
					zap.String("type", raw.Type()),
					zap.Error(err))
				return nil
			}
			out[i] = bv
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	views := make([]BlockView, 0, len(out))
	for _, bv := range out {
		if bv != nil {
			views = append(views, *bv)
		}
	}
	return views, nil
}

func (a *Assembler) resolveBlock(ctx context.Context, raw models.Document) (*BlockView, error) {
	raw = schema.ApplyDefaults(raw)
	bv := &BlockView{Key: keyOf(raw), Type: raw.Type()}

	switch raw.Type() {
	case models.BlockEventsList:
		var blk models.EventsListBlock
		if err := raw.Decode(&blk); err != nil {
			return nil, err
		}
		v, err := a.EventsList(ctx, blk)
		if err != nil {
			return nil, err
		}
		bv.EventsList = v

	case models.BlockFeaturedEvent:
		var blk models.FeaturedEventBlock
		if err := raw.Decode(&blk); err != nil {
			return nil, err
		}
		v, err := a.FeaturedEvent(ctx, blk)
		if err != nil || v == nil {
			return nil, err
		}
		bv.FeaturedEvent = v

	case models.BlockFileDownload:
		var blk models.FileDownloadBlock
		if err := raw.Decode(&blk); err != nil {
			return nil, err
		}
		v, err := a.FileDownload(ctx, blk)
		if err != nil {
			return nil, err
		}
		bv.FileDownload = v

	default:
		a.logger.Debug("skipping unsupported page builder block",
			zap.String("block", bv.Key),
			zap.String("type", raw.Type()))
		return nil, nil
	}
	return bv, nil
}

// EventsList resolves an events list block over [0, maxEvents), or
// [0, DefaultEventsListMax) when maxEvents is unset.
func (a *Assembler) EventsList(ctx context.Context, blk models.EventsListBlock) (*EventsListView, error) {
	end := blk.MaxEvents
	if end <= 0 {
		end = models.DefaultEventsListMax
	}
	list, err := a.ListEvents(ctx, content.Range{Start: 0, End: end}, blk.ShowPastEvents)
	if err != nil {
		return nil, err
	}
	title := blk.Title
	if title == "" {
		title = models.DefaultEventsListTitle
	}
	return &EventsListView{
		Key:         blk.Key,
		Title:       title,
		Description: blk.Description,
		ShowPast:    blk.ShowPastEvents,
		Events:      list.Events,
	}, nil
}

// FileDownload resolves the block's file asset. A block without an asset,
// or whose asset no longer exists, renders disabled.
func (a *Assembler) FileDownload(ctx context.Context, blk models.FileDownloadBlock) (*FileDownloadView, error) {
	v := &FileDownloadView{
		Key:         blk.Key,
		Title:       firstNonEmpty(blk.Title, "File Download"),
		Description: blk.Description,
		ButtonText:  firstNonEmpty(blk.ButtonText, models.DefaultDownloadButtonText),
		Filename:    "No file selected",
		Icon:        FileIcon(""),
		ShowSize:    blk.ShowFileSize == nil || *blk.ShowFileSize,
		ShowType:    blk.ShowFileType == nil || *blk.ShowFileType,
	}
	if !blk.File.Asset.Resolvable() {
		return v, nil
	}

	d, found, err := a.client.ByID(ctx, models.TypeFileAsset, blk.File.Asset.Ref)
	if err != nil {
		return nil, err
	}
	if !found {
		a.logger.Debug("file download asset does not resolve",
			zap.String("block", blk.Key),
			zap.String("ref", blk.File.Asset.Ref))
		return v, nil
	}
	var asset models.FileAsset
	if err := d.Decode(&asset); err != nil {
		return nil, err
	}
	if asset.URL == "" {
		asset.URL = AssetURL(a.client.Config(), models.PublishedID(asset.ID))
	}

	v.Filename = firstNonEmpty(asset.OriginalFilename, "Unknown file")
	v.URL = asset.URL
	v.Icon = FileIcon(asset.MimeType)
	v.Extension = strings.ToUpper(asset.Extension)
	if asset.Size > 0 {
		v.Size = humanize.Bytes(uint64(asset.Size))
	}
	v.Available = asset.URL != ""
	return v, nil
}

// FileIcon names the icon for a MIME type: image, video, audio, archive
// or text.
func FileIcon(mimeType string) string {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return "image"
	case strings.HasPrefix(mimeType, "video/"):
		return "video"
	case strings.HasPrefix(mimeType, "audio/"):
		return "audio"
	case strings.Contains(mimeType, "zip"), strings.Contains(mimeType, "rar"), strings.Contains(mimeType, "tar"):
		return "archive"
	}
	return "text"
}

func keyOf(d models.Document) string {
	k, _ := d["_key"].(string)
	return k
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
