package model

// Department groups the faculty's study programs.
type Department struct {
	Code        string  `db:"coded" json:"coded"`
	Name        string  `db:"intitule" json:"intitule"`
	Description *string `db:"description" json:"description,omitempty"`

	Programs []Program `db:"-" json:"filieres,omitempty"`
}

// Program (filière) is a course of study inside a department.
type Program struct {
	Code           string  `db:"codef" json:"codef"`
	Name           string  `db:"intitule" json:"intitule"`
	Level          *string `db:"niveau" json:"niveau,omitempty"`
	DurationYears  *int    `db:"duree" json:"duree,omitempty"`
	DepartmentCode string  `db:"coded" json:"coded"`
}

// CourseModule is a teaching unit inside a program.
type CourseModule struct {
	Code        string  `db:"codem" json:"codem"`
	Name        string  `db:"intitule" json:"intitule"`
	HourlyLoad  *int    `db:"volumeh" json:"volumeh,omitempty"`
	Semester    *string `db:"semestre" json:"semestre,omitempty"`
	ProgramCode string  `db:"codef" json:"codef"`
}

var programLevels = map[string]struct{}{
	"Licence":  {},
	"Master":   {},
	"Doctorat": {},
}

func ValidProgramLevel(level string) bool {
	_, ok := programLevels[level]
	return ok
}
