package usecase

import (
	"context"
	"sync"
	"time"

	"vodstream/internal/domain"
)

type fakeRepo struct {
	mu      sync.Mutex
	records map[domain.VideoID]domain.VideoRecord

	createErr    error
	updateErr    error
	getErr       error
	statusErr    error
	statusErrFor map[domain.VideoStatus]error

	statusCalls []domain.VideoStatus
}

func newFakeRepo(records ...domain.VideoRecord) *fakeRepo {
	r := &fakeRepo{records: make(map[domain.VideoID]domain.VideoRecord)}
	for _, record := range records {
		r.records[record.ID] = record
	}
	return r
}

func (r *fakeRepo) Create(ctx context.Context, v domain.VideoRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	if _, ok := r.records[v.ID]; ok {
		return domain.ErrAlreadyExists
	}
	r.records[v.ID] = v
	return nil
}

func (r *fakeRepo) Update(ctx context.Context, v domain.VideoRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.records[v.ID]; !ok {
		return domain.ErrNotFound
	}
	r.records[v.ID] = v
	return nil
}

func (r *fakeRepo) Get(ctx context.Context, id domain.VideoID) (domain.VideoRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return domain.VideoRecord{}, r.getErr
	}
	record, ok := r.records[id]
	if !ok {
		return domain.VideoRecord{}, domain.ErrNotFound
	}
	return record, nil
}

func (r *fakeRepo) List(ctx context.Context, filter domain.VideoFilter) ([]domain.VideoRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.VideoRecord, 0, len(r.records))
	for _, record := range r.records {
		if filter.Status != nil && record.Status != *filter.Status {
			continue
		}
		out = append(out, record)
	}
	return out, nil
}

func (r *fakeRepo) Delete(ctx context.Context, id domain.VideoID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.records, id)
	return nil
}

func (r *fakeRepo) UpdateStatus(ctx context.Context, id domain.VideoID, status domain.VideoStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.statusErr != nil {
		return r.statusErr
	}
	if err := r.statusErrFor[status]; err != nil {
		return err
	}
	record, ok := r.records[id]
	if !ok {
		return domain.ErrNotFound
	}
	record.Status = status
	r.records[id] = record
	r.statusCalls = append(r.statusCalls, status)
	return nil
}

func (r *fakeRepo) UpdateDuration(ctx context.Context, id domain.VideoID, seconds int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[id]
	if !ok {
		return domain.ErrNotFound
	}
	record.DurationSeconds = seconds
	r.records[id] = record
	return nil
}

func (r *fakeRepo) UpdateThumbnail(ctx context.Context, id domain.VideoID, path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[id]
	if !ok {
		return domain.ErrNotFound
	}
	record.ThumbnailPath = path
	r.records[id] = record
	return nil
}

func (r *fakeRepo) UpdateRendition(ctx context.Context, id domain.VideoID, res domain.Resolution, rendition domain.Rendition) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[id]
	if !ok {
		return domain.ErrNotFound
	}
	if record.Renditions == nil {
		record.Renditions = make(map[domain.Resolution]domain.Rendition)
	}
	record.Renditions[res] = rendition
	r.records[id] = record
	return nil
}

func (r *fakeRepo) IncrementViews(ctx context.Context, id domain.VideoID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[id]
	if !ok {
		return domain.ErrNotFound
	}
	record.ViewCount++
	r.records[id] = record
	return nil
}

func (r *fakeRepo) record(id domain.VideoID) domain.VideoRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.records[id]
}

type fakeQueue struct {
	mu         sync.Mutex
	enqueued   []domain.VideoID
	pending    map[domain.VideoID]bool
	enqueueErr error
	markErr    error
}

func newFakeQueue() *fakeQueue {
	return &fakeQueue{pending: make(map[domain.VideoID]bool)}
}

func (q *fakeQueue) Enqueue(ctx context.Context, id domain.VideoID) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.enqueueErr != nil {
		return q.enqueueErr
	}
	q.enqueued = append(q.enqueued, id)
	return nil
}

func (q *fakeQueue) Dequeue(ctx context.Context, timeout time.Duration) (domain.VideoID, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.enqueued) == 0 {
		return "", domain.ErrNotFound
	}
	id := q.enqueued[0]
	q.enqueued = q.enqueued[1:]
	return id, nil
}

func (q *fakeQueue) Ack(ctx context.Context, id domain.VideoID) error { return nil }

func (q *fakeQueue) RequeueStale(ctx context.Context, olderThan time.Duration) (int, error) {
	return 0, nil
}

func (q *fakeQueue) MarkPending(ctx context.Context, id domain.VideoID, ttl time.Duration) (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.markErr != nil {
		return false, q.markErr
	}
	if q.pending[id] {
		return false, nil
	}
	q.pending[id] = true
	return true, nil
}

func (q *fakeQueue) ClearPending(ctx context.Context, id domain.VideoID) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.pending, id)
	return nil
}

func (q *fakeQueue) Depth(ctx context.Context) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return int64(len(q.enqueued)), nil
}

func (q *fakeQueue) enqueuedIDs() []domain.VideoID {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]domain.VideoID(nil), q.enqueued...)
}

type fakeEncoder struct {
	mu            sync.Mutex
	duration      int
	thumbnailErr  error
	hlsErrFor     map[domain.Resolution]error
	hlsCalls      []string
	thumbnailCall string
}

func (e *fakeEncoder) DurationSeconds(ctx context.Context, inputPath string) int {
	return e.duration
}

func (e *fakeEncoder) Thumbnail(ctx context.Context, inputPath, outputPath string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.thumbnailCall = outputPath
	return e.thumbnailErr
}

func (e *fakeEncoder) ConvertHLS(ctx context.Context, inputPath, outputDir string, quality domain.Quality) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hlsCalls = append(e.hlsCalls, outputDir)
	for res, err := range e.hlsErrFor {
		q := domain.QualityFor(res)
		if q.Width == quality.Width && q.Height == quality.Height {
			return err
		}
	}
	return nil
}

func (e *fakeEncoder) ConvertMP4(ctx context.Context, inputPath, outputPath string, quality domain.Quality) error {
	return nil
}

type fakeLocator struct {
	path string
	err  error
	root string
}

func (l *fakeLocator) Resolve(record domain.VideoRecord) (string, error) {
	if l.err != nil {
		return "", l.err
	}
	return l.path, nil
}

func (l *fakeLocator) MediaRoot() string { return l.root }
