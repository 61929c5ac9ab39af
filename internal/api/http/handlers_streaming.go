package apihttp

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"vodstream/internal/domain"
	"vodstream/internal/media"
	"vodstream/internal/metrics"
)

// defaultRangeWindow is served when a Range header cannot be parsed: rather
// than failing the request, players get the first chunk and recover by
// issuing proper ranges afterwards.
const defaultRangeWindow = int64(1 << 20)

// originalFileName is the sentinel segment name emitted by the fallback
// manifest. Requests for it stream the untranscoded source file.
const originalFileName = "original.mp4"

// fallbackManifest is a single-entry playlist pointing at the original file,
// served when a tier's HLS output does not exist yet (or never will).
const fallbackManifest = "#EXTM3U\n" +
	"#EXT-X-VERSION:3\n" +
	"#EXT-X-TARGETDURATION:9999\n" +
	"#EXTINF:9999.0,\n" +
	originalFileName + "\n" +
	"#EXT-X-ENDLIST\n"

// handleStream serves GET /video/{id}/{resolution}/{file} where file is
// index.m3u8, a segment, or the original-file sentinel.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}

	segments := pathSegments(r.URL.Path, "/video/")
	if len(segments) != 3 {
		writeError(w, http.StatusNotFound, "not_found", "unknown route")
		return
	}
	id := domain.VideoID(segments[0])

	resolution, err := domain.ParseResolution(segments[1])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid resolution: "+segments[1])
		return
	}

	record, err := s.repo.Get(r.Context(), id)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	// Drafts and archived records are invisible to players.
	if record.Status != domain.VideoPublished {
		writeError(w, http.StatusNotFound, "not_found", "video not found")
		return
	}

	sourcePath, err := s.locator.Resolve(record)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "video source not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "source resolution failed")
		return
	}

	name := segments[2]
	if name == "index.m3u8" {
		s.serveManifest(w, r, sourcePath, resolution)
		return
	}
	s.serveSegment(w, r, sourcePath, resolution, name)
}

func (s *Server) serveManifest(w http.ResponseWriter, r *http.Request, sourcePath string, resolution domain.Resolution) {
	manifestPath := media.ManifestPath(sourcePath, resolution)
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		// The tier was not transcoded (yet); hand the player the original
		// file through a synthetic single-entry playlist.
		metrics.FallbackManifestsTotal.Inc()
		s.logger.Debug("serving fallback manifest",
			slog.String("resolution", string(resolution)),
			slog.String("manifest", manifestPath),
		)
		data = []byte(fallbackManifest)
	}

	w.Header().Set("Content-Type", "application/vnd.apple.mpegurl")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		_, _ = w.Write(data)
	}
}

func (s *Server) serveSegment(w http.ResponseWriter, r *http.Request, sourcePath string, resolution domain.Resolution, name string) {
	// Segment names come straight from the URL; anything that could walk out
	// of the rendition directory is treated as absent, not as an error.
	if !validSegmentName(name) {
		writeError(w, http.StatusNotFound, "not_found", "segment not found")
		return
	}

	if name == originalFileName {
		s.serveRangedFile(w, r, sourcePath, "video/mp4")
		return
	}

	// Only transport-stream segments live in the rendition directory; any
	// other file there (encoder temp files and the like) stays private.
	if !strings.HasSuffix(name, ".ts") {
		writeError(w, http.StatusNotFound, "not_found", "segment not found")
		return
	}

	segmentPath := filepath.Join(media.HLSDir(sourcePath, resolution), name)
	file, err := os.Open(segmentPath)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", "segment not found")
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil || info.IsDir() {
		writeError(w, http.StatusNotFound, "not_found", "segment not found")
		return
	}

	metrics.SegmentsServedTotal.Inc()
	w.Header().Set("Content-Type", "video/MP2T")
	w.Header().Set("Accept-Ranges", "bytes")
	w.Header().Set("Content-Length", strconv.FormatInt(info.Size(), 10))
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		_, _ = io.Copy(w, file)
	}
}

// serveRangedFile streams a file honoring single-span byte ranges. A request
// without a Range header gets the whole file with 200; a malformed or
// unsatisfiable Range gets the first default window with 206 instead of an
// error, so a confused player always ends up with playable bytes.
func (s *Server) serveRangedFile(w http.ResponseWriter, r *http.Request, path, contentType string) {
	file, err := os.Open(path)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", "file not found")
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil || info.IsDir() {
		writeError(w, http.StatusNotFound, "not_found", "file not found")
		return
	}
	size := info.Size()

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Accept-Ranges", "bytes")

	rangeHeader := strings.TrimSpace(r.Header.Get("Range"))
	if rangeHeader == "" || size == 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
		w.WriteHeader(http.StatusOK)
		if r.Method != http.MethodHead {
			_, _ = io.Copy(w, file)
		}
		return
	}

	start, end, err := parseByteRange(rangeHeader, size)
	if err != nil {
		start = 0
		end = defaultRangeWindow - 1
		if end >= size {
			end = size - 1
		}
	}

	length := end - start + 1
	w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", start, end, size))
	w.Header().Set("Content-Length", strconv.FormatInt(length, 10))
	w.WriteHeader(http.StatusPartialContent)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := file.Seek(start, io.SeekStart); err != nil {
		return
	}
	_, _ = io.CopyN(w, file, length)
}

// validSegmentName accepts plain file names only; separators and parent
// references never reach the filesystem.
func validSegmentName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	if strings.ContainsAny(name, "/\\") {
		return false
	}
	if strings.Contains(name, "..") {
		return false
	}
	return true
}
