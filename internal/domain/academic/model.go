// Package academic holds the faculty and career taxonomy.
package academic

// Faculty is a university faculty.
type Faculty struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Career is a degree program. It always belongs to exactly one faculty.
type Career struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	FacultyID string `json:"facultyId"`
}

// Selection is a faculty/career pair as chosen in a form. Changing the
// faculty always clears the career, so a career from the previous faculty
// can never be submitted.
type Selection struct {
	FacultyID string
	CareerID  string
}

// SetFaculty selects a faculty. Selecting a different faculty (or none)
// resets the career.
func (s *Selection) SetFaculty(facultyID string) {
	if s.FacultyID != facultyID {
		s.CareerID = ""
	}
	s.FacultyID = facultyID
}

// SetCareer selects a career; it is refused while no faculty is chosen.
func (s *Selection) SetCareer(careerID string) bool {
	if s.FacultyID == "" {
		return false
	}
	s.CareerID = careerID
	return true
}

// Complete reports whether both fields are chosen.
func (s *Selection) Complete() bool {
	return s.FacultyID != "" && s.CareerID != ""
}
