package fdfshttp

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/dmitrymomot/fdfskit/pkg/fdfs"
	"github.com/dmitrymomot/fdfskit/pkg/file"
	"github.com/dmitrymomot/fdfskit/pkg/handler"
	"github.com/dmitrymomot/fdfskit/pkg/logger"
	"github.com/dmitrymomot/fdfskit/pkg/pathutil"
)

// Uploaded describes a stored file in API responses.
type Uploaded struct {
	Group    string `json:"group"`
	Path     string `json:"path"`
	FullPath string `json:"full_path"`
	URL      string `json:"url"`
	ThumbURL string `json:"thumb_url,omitempty"`
}

// Info is FileInfo plus the access URL.
type Info struct {
	fdfs.FileInfo
	URL string `json:"url"`
}

// Normalized is the reply of GET /normalize.
type Normalized struct {
	Input      string   `json:"input"`
	Normalized string   `json:"normalized"`
	Segments   []string `json:"segments"`
	Parent     string   `json:"parent"`
	Absolute   bool     `json:"absolute"`
	SubPath    string   `json:"sub_path,omitempty"`
}

type uploadRequest struct {
	File  *multipart.FileHeader `file:"file,required"`
	Thumb bool                  `query:"thumb"`
}

type refRequest struct {
	Ref      string `path:"*"`
	Download bool   `query:"download"`
}

type normalizeRequest struct {
	Path string `query:"path"`
	Base string `query:"base"`
}

func (a *api) upload(ctx context.Context, req uploadRequest) handler.Response {
	fh := req.File
	if err := file.ValidateMIMEType(fh, a.allowedTypes...); err != nil {
		return handler.Fail(err)
	}

	var (
		sp  fdfs.StorePath
		err error
	)
	if req.Thumb {
		if !file.IsImage(fh) {
			return handler.Fail(fmt.Errorf("%w: %s", fdfs.ErrNotImage, file.SanitizeFilename(fh.Filename)))
		}
		sp, err = a.client.UploadMultipartWithThumb(ctx, fh)
	} else {
		sp, err = a.client.UploadMultipart(ctx, fh)
	}
	if err != nil {
		return handler.Fail(err)
	}

	out := Uploaded{
		Group:    sp.Group,
		Path:     sp.Path,
		FullPath: sp.FullPath(),
		URL:      a.client.URL(sp),
	}
	if req.Thumb {
		out.ThumbURL = a.client.URL(fdfs.StorePath{Group: sp.Group, Path: a.client.ThumbPath(sp.Path)})
	}

	a.log.InfoContext(ctx, "file stored", logger.StorageKey(out.FullPath), logger.Size(fh.Size))
	return handler.JSON(out, handler.WithJSONStatus(http.StatusCreated))
}

func (a *api) download(ctx context.Context, req refRequest) handler.Response {
	info, err := a.client.FileInfo(ctx, req.Ref)
	if err != nil {
		return handler.Fail(err)
	}
	return fileResponse{
		client:     a.client,
		log:        a.log,
		ref:        req.Ref,
		info:       info,
		attachment: req.Download,
	}
}

func (a *api) delete(ctx context.Context, req refRequest) handler.Response {
	if err := a.client.Delete(ctx, req.Ref); err != nil {
		return handler.Fail(err)
	}
	return handler.Empty()
}

func (a *api) info(ctx context.Context, req refRequest) handler.Response {
	info, err := a.client.FileInfo(ctx, req.Ref)
	if err != nil {
		return handler.Fail(err)
	}
	return handler.JSON(Info{FileInfo: info, URL: a.client.URL(info.StorePath())})
}

func (a *api) normalize(_ context.Context, req normalizeRequest) handler.Response {
	p := req.Path
	if strings.TrimSpace(p) == "" {
		return handler.Fail(fmt.Errorf("%w: query parameter \"path\" is required", file.ErrInvalidPath))
	}

	out := Normalized{
		Input:      p,
		Normalized: pathutil.Normalize(p),
		Segments:   pathutil.Segments(p),
		Parent:     pathutil.Parent(p, 1),
		Absolute:   pathutil.IsAbsolute(pathutil.Normalize(p)),
	}
	if req.Base != "" {
		out.SubPath = pathutil.SubPath(req.Base, p)
	}
	if out.Segments == nil {
		out.Segments = []string{}
	}
	return handler.JSON(out)
}

// fileResponse streams a stored file with validators for conditional GETs.
type fileResponse struct {
	client     *fdfs.Client
	log        *slog.Logger
	ref        string
	info       fdfs.FileInfo
	attachment bool
}

func (f fileResponse) Render(w http.ResponseWriter, r *http.Request) error {
	etag := fmt.Sprintf(`"%08x"`, f.info.CRC32)
	if etagMatch(r.Header.Get("If-None-Match"), etag) {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return nil
	}

	rc, err := f.client.Open(r.Context(), f.ref)
	if err != nil {
		return err
	}
	defer func() { _ = rc.Close() }()

	h := w.Header()
	h.Set("Content-Type", f.info.ContentType)
	h.Set("Content-Length", strconv.FormatInt(f.info.Size, 10))
	h.Set("ETag", etag)
	if !f.info.CreateTime.IsZero() {
		h.Set("Last-Modified", f.info.CreateTime.UTC().Format(http.TimeFormat))
	}
	if f.attachment {
		name := file.SanitizeFilename(pathutil.LastSegment(f.info.Path))
		h.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	}
	w.WriteHeader(http.StatusOK)

	// Headers are sent; a failed copy can only be logged.
	if _, err := io.Copy(w, rc); err != nil {
		f.log.WarnContext(r.Context(), "download interrupted", logger.StorageKey(f.ref), logger.Error(err))
	}
	return nil
}

// etagMatch reports whether an If-None-Match header matches etag. The header
// is a comma separated list; "*" matches anything and weak tags compare by
// their opaque value.
func etagMatch(header, etag string) bool {
	if header == "" {
		return false
	}
	for tag := range strings.SplitSeq(header, ",") {
		tag = strings.TrimSpace(tag)
		if tag == "*" || strings.TrimPrefix(tag, "W/") == etag {
			return true
		}
	}
	return false
}
