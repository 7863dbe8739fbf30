package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/matzehuels/markstack/pkg/pipeline"
)

func TestJobLifecycle(t *testing.T) {
	j := New("final_v2", "/in", "/out")
	if j.ID == "" || j.Status != StatusQueued || j.Done() {
		t.Fatalf("new job = %+v", j)
	}
	j.Start()
	if j.Status != StatusRunning || j.StartedAt.IsZero() {
		t.Errorf("started job = %+v", j)
	}

	j.Finish([]pipeline.FolderReport{
		{Folder: "a", Report: &pipeline.Report{Succeeded: 3}},
		{Folder: "b", Report: &pipeline.Report{Succeeded: 2}},
	}, nil)
	if j.Status != StatusDone || j.Succeeded != 5 || j.Failed != 0 || !j.Done() {
		t.Errorf("finished job = %+v", j)
	}
}

func TestJobFinishFailures(t *testing.T) {
	j := New("p", "/in", "/out")
	j.Finish([]pipeline.FolderReport{{Folder: "a", Report: &pipeline.Report{Succeeded: 1, Failed: 1}}}, nil)
	if j.Status != StatusFailed || j.Failed != 1 {
		t.Errorf("job = %+v", j)
	}

	j = New("p", "/in", "/out")
	j.Finish(nil, context.Canceled)
	if j.Status != StatusFailed || j.Error != context.Canceled.Error() {
		t.Errorf("job = %+v", j)
	}
}

func TestNewUniqueIDs(t *testing.T) {
	if New("p", "a", "b").ID == New("p", "a", "b").ID {
		t.Error("IDs collide")
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close(ctx)

	j := New("p", "/in", "/out")
	if err := s.Create(ctx, j); err != nil {
		t.Fatal(err)
	}
	if err := s.Create(ctx, j); !errors.Is(err, ErrExists) {
		t.Errorf("duplicate Create: err = %v", err)
	}

	j.Start()
	if err := s.Update(ctx, j); err != nil {
		t.Fatal(err)
	}
	got, err := s.Get(ctx, j.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != StatusRunning {
		t.Errorf("status = %s", got.Status)
	}

	got.Status = StatusFailed
	again, _ := s.Get(ctx, j.ID)
	if again.Status != StatusRunning {
		t.Error("Get returned shared state")
	}

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing): err = %v", err)
	}
	if err := s.Update(ctx, New("p", "", "")); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update(missing): err = %v", err)
	}
}

func TestMemoryStoreList(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	var ids []string
	for i := 0; i < 5; i++ {
		j := New("p", "/in", "/out")
		j.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		ids = append(ids, j.ID)
		if err := s.Create(ctx, j); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.List(ctx, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d", len(got))
	}
	for i, want := range []string{ids[4], ids[3], ids[2]} {
		if got[i].ID != want {
			t.Errorf("List[%d] = %s, want %s", i, got[i].ID, want)
		}
	}

	all, _ := s.List(ctx, 0)
	if len(all) != 5 {
		t.Errorf("List(0) len = %d", len(all))
	}
}
