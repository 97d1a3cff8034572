package clientcli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
)

// Formatter formats results for output.
type Formatter interface {
	FormatUpload(w io.Writer, results []UploadResult) error
	FormatDownload(w io.Writer, result *DownloadResult) error
	FormatDelete(w io.Writer, results []DeleteResult) error
	FormatBatchDelete(w io.Writer, result *BatchDeleteResult) error
	FormatList(w io.Writer, result *ListResult) error
	FormatMkdir(w io.Writer, path string) error
	FormatError(w io.Writer, err error) error
	FormatProfileList(w io.Writer, profiles []Profile, defaultName string) error
	FormatProfileShow(w io.Writer, profile Profile, isDefault bool) error
}

// NewFormatter returns the appropriate formatter based on flags.
func NewFormatter(jsonOutput, quiet bool) Formatter {
	if jsonOutput {
		return &JSONFormatter{}
	}
	return &HumanFormatter{Quiet: quiet}
}

// HumanFormatter outputs human-readable text.
type HumanFormatter struct {
	Quiet bool
}

// FormatUpload formats upload results as human-readable text.
func (f *HumanFormatter) FormatUpload(w io.Writer, results []UploadResult) error {
	for i := range results {
		r := &results[i]
		if r.Err != nil {
			_, _ = fmt.Fprintf(w, "Error: %s - %v\n", r.LocalPath, r.Err)
			continue
		}
		if !f.Quiet {
			_, _ = fmt.Fprintf(w, "Uploaded: %s (%s)\n", r.RemotePath, formatSize(r.Size))
		}
	}
	return nil
}

// FormatDownload formats download result as human-readable text.
func (f *HumanFormatter) FormatDownload(w io.Writer, result *DownloadResult) error {
	if f.Quiet {
		return nil
	}
	if result.LocalPath == "-" {
		_, _ = fmt.Fprintf(w, "Downloaded: %s\n", result.RemotePath)
	} else {
		_, _ = fmt.Fprintf(w, "Downloaded: %s -> %s (%s)\n", result.RemotePath, result.LocalPath, formatSize(result.Size))
	}
	return nil
}

// FormatDelete formats delete results as human-readable text.
func (f *HumanFormatter) FormatDelete(w io.Writer, results []DeleteResult) error {
	for i := range results {
		r := &results[i]
		if r.Err != nil {
			_, _ = fmt.Fprintf(w, "Error: %s - %v\n", r.Path, r.Err)
			continue
		}
		if !f.Quiet {
			_, _ = fmt.Fprintf(w, "Deleted: %s\n", r.Path)
		}
	}
	return nil
}

// FormatBatchDelete formats a batch delete tally as human-readable text.
func (f *HumanFormatter) FormatBatchDelete(w io.Writer, result *BatchDeleteResult) error {
	if f.Quiet && result.Succeeded == result.Attempted {
		return nil
	}
	_, _ = fmt.Fprintf(w, "Deleted %d / %d items\n", result.Succeeded, result.Attempted)
	return nil
}

// FormatList formats the directory tree as indented text.
func (f *HumanFormatter) FormatList(w io.Writer, result *ListResult) error {
	if len(result.Nodes) == 0 {
		_, _ = fmt.Fprintln(w, "No files found")
		return nil
	}

	writeTree(w, result.Nodes, 0)

	if !f.Quiet {
		files, dirs := result.Count()
		_, _ = fmt.Fprintf(w, "\n%d file(s), %d folder(s) (%s total)\n", files, dirs, formatSize(result.TotalSize()))
	}
	return nil
}

func writeTree(w io.Writer, nodes []Node, level int) {
	indent := strings.Repeat("  ", level)
	for i := range nodes {
		n := &nodes[i]
		if n.IsDir() {
			_, _ = fmt.Fprintf(w, "%s%s/\n", indent, n.Name)
			writeTree(w, n.Children, level+1)
			continue
		}
		var size int64
		if n.Size != nil {
			size = int64(*n.Size)
		}
		_, _ = fmt.Fprintf(w, "%s%-*s  %10s\n", indent, max(1, 40-len(indent)), n.Name, formatSize(size))
	}
}

// FormatMkdir reports a created folder.
func (f *HumanFormatter) FormatMkdir(w io.Writer, path string) error {
	if !f.Quiet {
		_, _ = fmt.Fprintf(w, "Created: %s\n", path)
	}
	return nil
}

// FormatError formats an error as human-readable text.
func (f *HumanFormatter) FormatError(w io.Writer, err error) error {
	_, _ = fmt.Fprintf(w, "Error: %v\n", err)
	return nil
}

// JSONFormatter outputs JSON.
type JSONFormatter struct{}

// FormatUpload formats upload results as JSON.
func (f *JSONFormatter) FormatUpload(w io.Writer, results []UploadResult) error {
	// Convert errors to strings for JSON output
	type jsonResult struct {
		LocalPath  string `json:"local_path"`
		RemotePath string `json:"remote_path"`
		Size       int64  `json:"size_bytes,omitempty"`
		Error      string `json:"error,omitempty"`
	}

	output := make([]jsonResult, len(results))
	for i := range results {
		r := &results[i]
		jr := jsonResult{
			LocalPath:  r.LocalPath,
			RemotePath: r.RemotePath,
		}
		if r.Err != nil {
			jr.Error = r.Err.Error()
		} else {
			jr.Size = r.Size
		}
		output[i] = jr
	}

	return writeJSON(w, output)
}

// FormatDownload formats download result as JSON.
func (f *JSONFormatter) FormatDownload(w io.Writer, result *DownloadResult) error {
	return writeJSON(w, result)
}

// FormatDelete formats delete results as JSON.
func (f *JSONFormatter) FormatDelete(w io.Writer, results []DeleteResult) error {
	// Convert errors to strings for JSON output
	type jsonResult struct {
		Path    string `json:"path"`
		Deleted bool   `json:"deleted"`
		Error   string `json:"error,omitempty"`
	}

	output := struct {
		Results []jsonResult `json:"results"`
	}{
		Results: make([]jsonResult, len(results)),
	}

	for i, r := range results {
		jr := jsonResult{
			Path:    r.Path,
			Deleted: r.Deleted,
		}
		if r.Err != nil {
			jr.Error = r.Err.Error()
		}
		output.Results[i] = jr
	}

	return writeJSON(w, output)
}

// FormatBatchDelete formats a batch delete tally as JSON.
func (f *JSONFormatter) FormatBatchDelete(w io.Writer, result *BatchDeleteResult) error {
	return writeJSON(w, result)
}

// FormatList formats the directory tree as JSON.
func (f *JSONFormatter) FormatList(w io.Writer, result *ListResult) error {
	return writeJSON(w, result)
}

// FormatMkdir reports a created folder as JSON.
func (f *JSONFormatter) FormatMkdir(w io.Writer, path string) error {
	return writeJSON(w, struct {
		Path    string `json:"path"`
		Created bool   `json:"created"`
	}{Path: path, Created: true})
}

// FormatError formats an error as JSON.
func (f *JSONFormatter) FormatError(w io.Writer, err error) error {
	output := struct {
		Error string `json:"error"`
	}{
		Error: err.Error(),
	}
	return writeJSON(w, output)
}

// writeJSON writes a value as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// formatSize formats bytes as human-readable size.
func formatSize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
		TB = GB * 1024
	)

	switch {
	case bytes >= TB:
		return fmt.Sprintf("%.1f TB", float64(bytes)/TB)
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// profileMountRoot and profileTimeout show the value a client would use
// for a profile that leaves the field unset.
func profileMountRoot(p Profile) string {
	if p.MountRoot == "" {
		return DefaultMountRoot
	}
	return p.MountRoot
}

func profileTimeout(p Profile) time.Duration {
	if p.Timeout == 0 {
		return DefaultTimeout
	}
	return p.Timeout
}

// FormatProfileList prints one row per profile, marking the default with *.
func (f *HumanFormatter) FormatProfileList(w io.Writer, profiles []Profile, defaultName string) error {
	nameWidth := len("NAME")
	for _, p := range profiles {
		nameWidth = max(nameWidth, len(p.Name))
	}
	nameWidth = min(nameWidth, 20)

	_, _ = fmt.Fprintf(w, "  %-*s  %-10s  %s\n", nameWidth, "NAME", "MOUNT", "ENDPOINT")
	_, _ = fmt.Fprintf(w, "  %s  %s  %s\n", strings.Repeat("-", nameWidth), strings.Repeat("-", 10), strings.Repeat("-", 30))

	for _, p := range profiles {
		marker := " "
		if p.Name == defaultName {
			marker = "*"
		}

		name := p.Name
		if len(name) > nameWidth {
			name = name[:nameWidth-3] + "..."
		}

		_, _ = fmt.Fprintf(w, "%s %-*s  %-10s  %s\n", marker, nameWidth, name, profileMountRoot(p), p.Endpoint)
	}
	return nil
}

// FormatProfileShow prints every setting of one profile.
func (f *HumanFormatter) FormatProfileShow(w io.Writer, profile Profile, isDefault bool) error {
	name := profile.Name
	if isDefault {
		name += " (default)"
	}
	_, _ = fmt.Fprintf(w, "Name:       %s\n", name)
	_, _ = fmt.Fprintf(w, "Endpoint:   %s\n", profile.Endpoint)
	_, _ = fmt.Fprintf(w, "Mount root: %s\n", profileMountRoot(profile))
	_, _ = fmt.Fprintf(w, "Timeout:    %s\n", profileTimeout(profile))
	return nil
}

type jsonProfile struct {
	Name      string `json:"name"`
	Endpoint  string `json:"endpoint"`
	MountRoot string `json:"mount_root"`
	Timeout   string `json:"timeout"`
	Default   bool   `json:"default"`
}

func toJSONProfile(p Profile, isDefault bool) jsonProfile {
	return jsonProfile{
		Name:      p.Name,
		Endpoint:  p.Endpoint,
		MountRoot: profileMountRoot(p),
		Timeout:   profileTimeout(p).String(),
		Default:   isDefault,
	}
}

// FormatProfileList formats a list of profiles as JSON.
func (f *JSONFormatter) FormatProfileList(w io.Writer, profiles []Profile, defaultName string) error {
	output := struct {
		Profiles []jsonProfile `json:"profiles"`
	}{
		Profiles: make([]jsonProfile, 0, len(profiles)),
	}
	for _, p := range profiles {
		output.Profiles = append(output.Profiles, toJSONProfile(p, p.Name == defaultName))
	}
	return writeJSON(w, output)
}

// FormatProfileShow formats a single profile as JSON.
func (f *JSONFormatter) FormatProfileShow(w io.Writer, profile Profile, isDefault bool) error {
	return writeJSON(w, toJSONProfile(profile, isDefault))
}
