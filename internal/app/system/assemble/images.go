package assemble

import (
	"strings"

	"github.com/dalemusser/stratasite/internal/app/store/content"
	"github.com/dalemusser/stratasite/internal/domain/models"
)

// AssetCDN is the host serving uploaded images and files.
const AssetCDN = "https://cdn.sanity.io"

// ImageView is a displayable image.
type ImageView struct {
	URL string
	Alt string
}

// imageView resolves img to a URL. Images carrying a URL use it as-is;
// otherwise the asset reference id encodes the CDN path:
// image-<hash>-<w>x<h>-<ext> maps to images/<project>/<dataset>/<hash>-<w>x<h>.<ext>.
// It returns nil when no URL can be derived. fallbackAlt is used when the
// image has no alt text.
func imageView(cfg content.Config, img *models.Image, fallbackAlt string) *ImageView {
	if img == nil {
		return nil
	}
	alt := img.Alt
	if alt == "" {
		alt = fallbackAlt
	}
	if img.URL != "" {
		return &ImageView{URL: img.URL, Alt: alt}
	}
	if !img.Asset.Resolvable() {
		return nil
	}
	u := AssetURL(cfg, img.Asset.Ref)
	if u == "" {
		return nil
	}
	return &ImageView{URL: u, Alt: alt}
}

// AssetURL maps an image-… or file-… asset id to its CDN URL, or "" when
// id is not an asset id.
func AssetURL(cfg content.Config, id string) string {
	kind, rest, ok := strings.Cut(id, "-")
	if !ok {
		return ""
	}
	i := strings.LastIndex(rest, "-")
	if i <= 0 || i == len(rest)-1 {
		return ""
	}
	name, ext := rest[:i], rest[i+1:]

	var dir string
	switch kind {
	case "image":
		dir = "images"
	case "file":
		dir = "files"
	default:
		return ""
	}
	return AssetCDN + "/" + dir + "/" + cfg.ProjectID + "/" + cfg.Dataset + "/" + name + "." + ext
}
