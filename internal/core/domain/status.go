package domain

// Status describes the bootstrap state of a project without changing it.
type Status struct {
	Strategy       Strategy        `json:"strategy"`
	ProjectDir     string          `json:"project_dir"`
	Environment    PathStatus      `json:"environment"`
	DependencyFile PathStatus      `json:"dependency_file"`
	Script         PathStatus      `json:"script"`
	Tools          []ToolStatus    `json:"tools"`
	DriverEnabled  bool            `json:"driver_enabled"`
	Driver         []DriverInstall `json:"driver"`
}

// PathStatus reports whether a file or environment exists.
type PathStatus struct {
	Path   string `json:"path"`
	Exists bool   `json:"exists"`
}

// ToolStatus reports whether an executable resolves on PATH.
type ToolStatus struct {
	Name  string `json:"name"`
	Path  string `json:"path,omitempty"`
	Found bool   `json:"found"`
}

// Ready reports whether a run would skip every setup step.
func (s Status) Ready() bool {
	if !s.Environment.Exists {
		return false
	}
	if s.DriverEnabled {
		for _, d := range s.Driver {
			if !d.Installed {
				return false
			}
		}
	}
	return true
}
