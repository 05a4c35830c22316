package store

import (
	"path/filepath"
	"testing"
)

// storeFactories lets every test run against both implementations.
func storeFactories(t *testing.T) map[string]func(t *testing.T) Store {
	return map[string]func(t *testing.T) Store{
		"mem": func(t *testing.T) Store { return NewMemStore() },
		"sql": func(t *testing.T) Store {
			s, err := Open(filepath.Join(t.TempDir(), "trisect.db"))
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			return s
		},
	}
}

func TestRunLifecycle(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			st := factory(t)
			defer st.Close()

			run := &Run{Binary: "clang", Toolchain: "clang version 15.0.0", Jobs: 32}
			id, err := st.CreateRun(run)
			if err != nil {
				t.Fatalf("CreateRun: %v", err)
			}
			if id == 0 {
				t.Fatal("CreateRun returned id 0")
			}

			got, err := st.GetRun(id)
			if err != nil {
				t.Fatalf("GetRun: %v", err)
			}
			if got == nil || got.Status != "running" {
				t.Fatalf("GetRun = %+v, want running", got)
			}
			if got.StartedAt == "" {
				t.Error("StartedAt not set")
			}

			run.Status = "done"
			run.Submitted = 100
			run.Valid = 40
			run.Invalid = 58
			run.Crashed = 2
			if err := st.FinishRun(run); err != nil {
				t.Fatalf("FinishRun: %v", err)
			}

			got, err = st.GetRun(id)
			if err != nil {
				t.Fatalf("GetRun after finish: %v", err)
			}
			if got.Status != "done" || got.Crashed != 2 || got.Submitted != 100 {
				t.Errorf("finished run = %+v", got)
			}
			if got.FinishedAt == "" {
				t.Error("FinishedAt not set")
			}
		})
	}
}

func TestGetRun_Absent(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			st := factory(t)
			defer st.Close()
			got, err := st.GetRun(999)
			if err != nil {
				t.Fatalf("GetRun: %v", err)
			}
			if got != nil {
				t.Errorf("GetRun(999) = %+v, want nil", got)
			}
		})
	}
}

func TestListRuns_MostRecentFirst(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			st := factory(t)
			defer st.Close()

			for i := 0; i < 3; i++ {
				if _, err := st.CreateRun(&Run{Binary: "clang", Jobs: 1}); err != nil {
					t.Fatalf("CreateRun: %v", err)
				}
			}
			runs, err := st.ListRuns()
			if err != nil {
				t.Fatalf("ListRuns: %v", err)
			}
			if len(runs) != 3 {
				t.Fatalf("got %d runs, want 3", len(runs))
			}
			for i := 1; i < len(runs); i++ {
				if runs[i-1].ID < runs[i].ID {
					t.Errorf("runs not sorted most recent first: %d before %d", runs[i-1].ID, runs[i].ID)
				}
			}
		})
	}
}

func TestCrashes(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			st := factory(t)
			defer st.Close()

			runID, err := st.CreateRun(&Run{Binary: "clang", Jobs: 4})
			if err != nil {
				t.Fatalf("CreateRun: %v", err)
			}
			otherID, err := st.CreateRun(&Run{Binary: "clang", Jobs: 4})
			if err != nil {
				t.Fatalf("CreateRun: %v", err)
			}

			crashes := []*Crash{
				{RunID: runID, Triple: "i386-apple-windows-eabi", Diagnostic: "#0 0xaa foo\n"},
				{RunID: runID, Triple: "ppc64-ibm-aix", Diagnostic: "#0 0xbb bar\n"},
				{RunID: otherID, Triple: "sparc-sun", Diagnostic: "#0 0xcc baz\n"},
			}
			for _, c := range crashes {
				if _, err := st.InsertCrash(c); err != nil {
					t.Fatalf("InsertCrash: %v", err)
				}
			}

			got, err := st.ListCrashesByRun(runID)
			if err != nil {
				t.Fatalf("ListCrashesByRun: %v", err)
			}
			if len(got) != 2 {
				t.Fatalf("got %d crashes, want 2", len(got))
			}
			if got[0].Triple != "i386-apple-windows-eabi" || got[1].Triple != "ppc64-ibm-aix" {
				t.Errorf("crash order: %q, %q", got[0].Triple, got[1].Triple)
			}
			if got[0].CreatedAt == "" {
				t.Error("CreatedAt not set")
			}
		})
	}
}

func TestSqlStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trisect.db")

	st, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	id, err := st.CreateRun(&Run{Binary: "clang", Jobs: 8})
	if err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	st2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer st2.Close()
	got, err := st2.GetRun(id)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got == nil || got.Binary != "clang" {
		t.Errorf("run not persisted across reopen: %+v", got)
	}
}
