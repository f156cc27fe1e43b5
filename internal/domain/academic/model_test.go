package academic

import "testing"

func TestSelection_FacultyChangeResetsCareer(t *testing.T) {
	var s Selection
	s.SetFaculty("f1")
	if !s.SetCareer("c1") {
		t.Fatal("career refused with faculty selected")
	}
	if !s.Complete() {
		t.Fatal("complete selection reported incomplete")
	}

	s.SetFaculty("f2")
	if s.CareerID != "" {
		t.Fatalf("career %q survived a faculty change", s.CareerID)
	}
	if s.Complete() {
		t.Fatal("selection complete without career")
	}
}

func TestSelection_SameFacultyKeepsCareer(t *testing.T) {
	var s Selection
	s.SetFaculty("f1")
	s.SetCareer("c1")
	s.SetFaculty("f1")
	if s.CareerID != "c1" {
		t.Fatalf("career reset on re-selecting the same faculty")
	}
}

func TestSelection_CareerRequiresFaculty(t *testing.T) {
	var s Selection
	if s.SetCareer("c1") {
		t.Fatal("career accepted without faculty")
	}
	if s.CareerID != "" {
		t.Fatalf("career = %q", s.CareerID)
	}
}
