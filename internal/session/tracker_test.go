package session

import "testing"

func TestTrackerJob(t *testing.T) {
	tr := NewTracker()

	if !tr.JobChanged("", "") {
		t.Fatalf("without a snapshot everything counts as changed")
	}

	tr.CommitJob(" Go developer ", "Build services\n")

	if tr.JobChanged("Go developer", "Build services") {
		t.Fatalf("surrounding whitespace must be ignored")
	}

	if !tr.JobChanged("Go developer", "Build tools") {
		t.Fatalf("description change not detected")
	}

	if !tr.JobChanged("Senior Go developer", "Build services") {
		t.Fatalf("title change not detected")
	}
}

func TestTrackerResume(t *testing.T) {
	tr := NewTracker()
	tr.CommitResume("Five years of Go")

	if tr.ResumeChanged("  Five years of Go ") {
		t.Fatalf("surrounding whitespace must be ignored")
	}

	tr.ForgetResume()
	if !tr.ResumeChanged("Five years of Go") {
		t.Fatalf("forgotten snapshot must count as changed")
	}
}

func TestTrackerReset(t *testing.T) {
	tr := NewTracker()
	tr.CommitJob("a", "b")
	tr.CommitResume("c")
	tr.Reset()

	if !tr.JobChanged("a", "b") || !tr.ResumeChanged("c") {
		t.Fatalf("reset must drop both snapshots")
	}
}
