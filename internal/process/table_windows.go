//go:build windows

package process

import (
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/sys/windows"

	"github.com/steveyegge/srmauto/internal/util"
)

type osTable struct{}

// NewOSTable returns the process table of the running system, read with
// tasklist and driven with taskkill / TerminateProcess.
func NewOSTable() Table {
	return osTable{}
}

// List parses `tasklist /FO CSV /NH`:
// "Image Name","PID","Session Name","Session#","Mem Usage"
func (osTable) List() ([]Info, error) {
	out, err := util.ExecWithOutput("", "tasklist", "/FO", "CSV", "/NH")
	if err != nil {
		return nil, err
	}
	return parseTasklist(out)
}

func parseTasklist(out string) ([]Info, error) {
	r := csv.NewReader(strings.NewReader(out))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing tasklist output: %w", err)
	}
	var procs []Info
	for _, rec := range records {
		if len(rec) < 2 {
			continue
		}
		pid, err := strconv.Atoi(strings.TrimSpace(rec[1]))
		if err != nil {
			continue
		}
		procs = append(procs, Info{PID: pid, Name: rec[0]})
	}
	return procs, nil
}

// Terminate asks the process to close via taskkill without /F, which posts
// WM_CLOSE to its windows.
func (osTable) Terminate(pid int) error {
	err := util.ExecRun("", "taskkill", "/PID", strconv.Itoa(pid))
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "not found"):
		return fmt.Errorf("pid %d: %w", pid, ErrNotFound)
	case strings.Contains(msg, "access is denied"):
		return fmt.Errorf("pid %d: %w", pid, ErrAccessDenied)
	default:
		return err
	}
}

// Kill forcibly ends the process with TerminateProcess.
func (osTable) Kill(pid int) error {
	h, err := windows.OpenProcess(windows.PROCESS_TERMINATE|windows.SYNCHRONIZE, false, uint32(pid))
	if err != nil {
		return mapWinErr(pid, err)
	}
	defer windows.CloseHandle(h)

	if err := windows.TerminateProcess(h, 1); err != nil {
		return mapWinErr(pid, err)
	}
	return nil
}

// Alive opens the process and checks whether its handle is signalled.
func (osTable) Alive(pid int) bool {
	if pid <= 0 {
		return false
	}
	h, err := windows.OpenProcess(windows.SYNCHRONIZE|windows.PROCESS_QUERY_LIMITED_INFORMATION, false, uint32(pid))
	if err != nil {
		// Protected processes refuse the handle but are still there.
		return errors.Is(err, windows.ERROR_ACCESS_DENIED)
	}
	defer windows.CloseHandle(h)

	event, err := windows.WaitForSingleObject(h, 0)
	if err != nil {
		return false
	}
	return event == uint32(windows.WAIT_TIMEOUT)
}

func mapWinErr(pid int, err error) error {
	switch {
	case errors.Is(err, windows.ERROR_INVALID_PARAMETER):
		return fmt.Errorf("pid %d: %w", pid, ErrNotFound)
	case errors.Is(err, windows.ERROR_ACCESS_DENIED):
		return fmt.Errorf("pid %d: %w", pid, ErrAccessDenied)
	default:
		return fmt.Errorf("pid %d: %w", pid, err)
	}
}
