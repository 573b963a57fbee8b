package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/meridian-labs/meridian-core/internal/core/domain"
)

// setupTestQueue creates a miniredis-backed queue
func setupTestQueue(t *testing.T) (*Queue, *miniredis.Miniredis, func()) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	queue, err := NewQueue(client, "worker-test")
	if err != nil {
		t.Fatalf("failed to create queue: %v", err)
	}

	return queue, mr, func() {
		client.Close()
		mr.Close()
	}
}

func TestNewQueue(t *testing.T) {
	queue, _, cleanup := setupTestQueue(t)
	defer cleanup()

	if queue == nil {
		t.Fatal("expected non-nil queue")
	}

	// Creating a second queue against the same stream must not fail on the
	// existing consumer group.
	second, err := NewQueue(queue.client, "worker-test-2")
	if err != nil {
		t.Fatalf("second queue creation failed: %v", err)
	}
	if second == nil {
		t.Fatal("expected non-nil second queue")
	}
}

func TestQueue_EnqueueDequeue(t *testing.T) {
	queue, _, cleanup := setupTestQueue(t)
	defer cleanup()

	ctx := context.Background()
	task := domain.NewEmbedChunkTask("tenant-a", "doc-1", "chunk-1")

	if err := queue.Enqueue(ctx, task); err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}

	got, err := queue.DequeueWithTimeout(ctx, 1)
	if err != nil {
		t.Fatalf("dequeue failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected a task")
	}
	if got.ID != task.ID {
		t.Errorf("expected task %s, got %s", task.ID, got.ID)
	}
	if got.Status != domain.TaskStatusProcessing {
		t.Errorf("expected processing status, got %s", got.Status)
	}
	if got.Attempts != 1 {
		t.Errorf("expected attempt 1, got %d", got.Attempts)
	}
	if got.ChunkID() != "chunk-1" {
		t.Errorf("payload lost in transit: %q", got.ChunkID())
	}
}

func TestQueue_EnqueueBatch(t *testing.T) {
	queue, _, cleanup := setupTestQueue(t)
	defer cleanup()

	ctx := context.Background()
	tasks := []*domain.Task{
		domain.NewEmbedChunkTask("tenant-a", "doc-1", "chunk-1"),
		domain.NewEmbedChunkTask("tenant-a", "doc-1", "chunk-2"),
		domain.NewEmbedChunkTask("tenant-a", "doc-1", "chunk-3"),
	}

	if err := queue.EnqueueBatch(ctx, tasks); err != nil {
		t.Fatalf("batch enqueue failed: %v", err)
	}

	seen := make(map[string]bool)
	for range tasks {
		got, err := queue.DequeueWithTimeout(ctx, 1)
		if err != nil {
			t.Fatalf("dequeue failed: %v", err)
		}
		if got == nil {
			t.Fatal("expected a task")
		}
		seen[got.ID] = true
	}
	if len(seen) != 3 {
		t.Errorf("expected 3 distinct tasks, got %d", len(seen))
	}
}

func TestQueue_Ack(t *testing.T) {
	queue, _, cleanup := setupTestQueue(t)
	defer cleanup()

	ctx := context.Background()
	task := domain.NewEmbedChunkTask("tenant-a", "doc-1", "chunk-1")
	_ = queue.Enqueue(ctx, task)

	got, err := queue.DequeueWithTimeout(ctx, 1)
	if err != nil || got == nil {
		t.Fatalf("dequeue failed: %v %v", got, err)
	}

	if err := queue.Ack(ctx, got.ID); err != nil {
		t.Fatalf("ack failed: %v", err)
	}

	stored, err := queue.GetTask(ctx, got.ID)
	if err != nil {
		t.Fatalf("get task failed: %v", err)
	}
	if stored.Status != domain.TaskStatusCompleted {
		t.Errorf("expected completed status, got %s", stored.Status)
	}
}

func TestQueue_NackSchedulesRetry(t *testing.T) {
	queue, _, cleanup := setupTestQueue(t)
	defer cleanup()

	ctx := context.Background()
	task := domain.NewEmbedChunkTask("tenant-a", "doc-1", "chunk-1")
	_ = queue.Enqueue(ctx, task)

	got, err := queue.DequeueWithTimeout(ctx, 1)
	if err != nil || got == nil {
		t.Fatalf("dequeue failed: %v %v", got, err)
	}

	if err := queue.Nack(ctx, got.ID, "provider timeout"); err != nil {
		t.Fatalf("nack failed: %v", err)
	}

	stored, err := queue.GetTask(ctx, got.ID)
	if err != nil {
		t.Fatalf("get task failed: %v", err)
	}
	if stored.Status != domain.TaskStatusPending {
		t.Errorf("expected pending for retry, got %s", stored.Status)
	}
	if stored.Error != "provider timeout" {
		t.Errorf("expected error recorded, got %q", stored.Error)
	}
	if !stored.ScheduledFor.After(time.Now()) {
		t.Error("expected backoff to schedule the retry in the future")
	}

	// The retry sits in the scheduled set, not the stream.
	if next, _ := queue.DequeueWithTimeout(ctx, 1); next != nil {
		t.Errorf("retry delivered before its backoff elapsed: %s", next.ID)
	}
}

func TestQueue_NackExhaustsAttempts(t *testing.T) {
	queue, _, cleanup := setupTestQueue(t)
	defer cleanup()

	ctx := context.Background()
	task := domain.NewEmbedChunkTask("tenant-a", "doc-1", "chunk-1")
	task.MaxAttempts = 1
	_ = queue.Enqueue(ctx, task)

	got, err := queue.DequeueWithTimeout(ctx, 1)
	if err != nil || got == nil {
		t.Fatalf("dequeue failed: %v %v", got, err)
	}

	if err := queue.Nack(ctx, got.ID, "permanent failure"); err != nil {
		t.Fatalf("nack failed: %v", err)
	}

	stored, err := queue.GetTask(ctx, got.ID)
	if err != nil {
		t.Fatalf("get task failed: %v", err)
	}
	if stored.Status != domain.TaskStatusFailed {
		t.Errorf("expected failed status, got %s", stored.Status)
	}
	if stored.Error != "permanent failure" {
		t.Errorf("expected error recorded, got %q", stored.Error)
	}
}

func TestQueue_ScheduledTaskPromoted(t *testing.T) {
	queue, _, cleanup := setupTestQueue(t)
	defer cleanup()

	ctx := context.Background()
	task := domain.NewEmbedChunkTask("tenant-a", "doc-1", "chunk-1")
	task.ScheduledFor = time.Now().Add(2 * time.Second)
	_ = queue.Enqueue(ctx, task)

	// Not due yet.
	if got, _ := queue.DequeueWithTimeout(ctx, 1); got != nil {
		t.Fatalf("task delivered before its schedule: %s", got.ID)
	}

	time.Sleep(2100 * time.Millisecond)

	got, err := queue.DequeueWithTimeout(ctx, 1)
	if err != nil {
		t.Fatalf("dequeue failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected the scheduled task after its due time")
	}
	if got.ID != task.ID {
		t.Errorf("expected task %s, got %s", task.ID, got.ID)
	}
}

func TestQueue_GetTaskMissing(t *testing.T) {
	queue, _, cleanup := setupTestQueue(t)
	defer cleanup()

	task, err := queue.GetTask(context.Background(), "no-such-task")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task != nil {
		t.Errorf("expected nil for a missing task, got %+v", task)
	}
}

func TestQueue_DequeueEmpty(t *testing.T) {
	queue, _, cleanup := setupTestQueue(t)
	defer cleanup()

	task, err := queue.DequeueWithTimeout(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task != nil {
		t.Errorf("expected nil on an empty queue, got %+v", task)
	}
}

func TestQueue_Ping(t *testing.T) {
	queue, mr, cleanup := setupTestQueue(t)
	defer cleanup()

	if err := queue.Ping(context.Background()); err != nil {
		t.Errorf("expected healthy ping: %v", err)
	}

	mr.Close()
	if err := queue.Ping(context.Background()); err == nil {
		t.Error("expected ping failure after redis went away")
	}
}
