package backend

import (
	"github.com/shirou/gopsutil/v3/process"
)

// procService probes and terminates daemon processes by name.
type procService interface {
	Alive(name string) (bool, error)
	Terminate(name string) error
}

// gopsProcs implements procService over the system process table.
type gopsProcs struct{}

func (gopsProcs) Alive(name string) (bool, error) {
	procs, err := process.Processes()
	if err != nil {
		return false, err
	}

	for _, p := range procs {
		n, err := p.Name()
		if err != nil {
			// Processes can vanish between listing and inspection.
			continue
		}
		if n == name {
			return true, nil
		}
	}

	return false, nil
}

func (gopsProcs) Terminate(name string) error {
	procs, err := process.Processes()
	if err != nil {
		return err
	}

	for _, p := range procs {
		n, err := p.Name()
		if err != nil {
			continue
		}
		if n == name {
			_ = p.Terminate()
		}
	}

	return nil
}
