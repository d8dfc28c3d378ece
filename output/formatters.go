// Package output renders a Result — the summary of one download
// invocation — as JSON, YAML, CSV, or a human-readable table, the way the
// teacher's benchmark reports one pluggable Formatter per output shape.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"maps"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Result is the summary handed to a Formatter after a download finishes
// (successfully or not).
type Result struct {
	Input      string        `json:"input" yaml:"input"`
	Output     string        `json:"output" yaml:"output"`
	Variant    string        `json:"variant,omitempty" yaml:"variant,omitempty"`
	Bandwidth  string        `json:"bandwidth,omitempty" yaml:"bandwidth,omitempty"`
	Resolution string        `json:"resolution,omitempty" yaml:"resolution,omitempty"`
	Segments   int           `json:"segments" yaml:"segments"`
	Bytes      int64         `json:"bytes" yaml:"bytes"`
	Duration   time.Duration `json:"duration_ns" yaml:"duration_ns"`
	Merged     bool          `json:"merged" yaml:"merged"`
	Success    bool          `json:"success" yaml:"success"`
	ErrorKind  string        `json:"error_kind,omitempty" yaml:"error_kind,omitempty"`
	ErrorMsg   string        `json:"error_message,omitempty" yaml:"error_message,omitempty"`
}

// Formatter renders a Result (or any data derived from one) into bytes.
type Formatter interface {
	Format(data any, prettyPrint bool) ([]byte, error)
}

// JSONFormatter formats output as JSON.
type JSONFormatter struct{}

func (f *JSONFormatter) Format(data any, prettyPrint bool) ([]byte, error) {
	if prettyPrint {
		return json.MarshalIndent(data, "", "  ")
	}
	return json.Marshal(data)
}

// YAMLFormatter formats output as YAML.
type YAMLFormatter struct{}

func (f *YAMLFormatter) Format(data any, prettyPrint bool) ([]byte, error) {
	return yaml.Marshal(data)
}

// CSVFormatter formats a Result as a single-row CSV with header, flattening
// it through ExtractFlattenedData/ConvertToStringMap so a new Result field
// shows up in the output without this formatter needing a matching edit.
type CSVFormatter struct{}

func (f *CSVFormatter) Format(data any, prettyPrint bool) ([]byte, error) {
	res, ok := data.(*Result)
	if !ok {
		return nil, fmt.Errorf("csv formatter requires *output.Result, got %T", data)
	}

	strs := ConvertToStringMap(ExtractFlattenedData(res, ""))
	headers := make([]string, 0, len(strs))
	for key := range strs {
		headers = append(headers, key)
	}
	sort.Strings(headers)

	row := make([]string, len(headers))
	for i, key := range headers {
		row[i] = strs[key]
	}

	var out strings.Builder
	writer := csv.NewWriter(&out)
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	if err := writer.Write(row); err != nil {
		return nil, fmt.Errorf("failed to write CSV record: %w", err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return []byte(out.String()), nil
}

// TableFormatter formats a Result as a human-readable block.
type TableFormatter struct{}

func (f *TableFormatter) Format(data any, prettyPrint bool) ([]byte, error) {
	res, ok := data.(*Result)
	if !ok {
		return nil, fmt.Errorf("table formatter requires *output.Result, got %T", data)
	}

	var out strings.Builder
	out.WriteString("DOWNLOAD RESULT\n")
	out.WriteString("===============\n\n")

	status := "OK"
	if !res.Success {
		status = "FAILED"
	}
	fmt.Fprintf(&out, "Status:     %s\n", status)
	fmt.Fprintf(&out, "Input:      %s\n", res.Input)
	fmt.Fprintf(&out, "Output:     %s\n", res.Output)
	if res.Variant != "" || res.Bandwidth != "" || res.Resolution != "" {
		fmt.Fprintf(&out, "Variant:    name=%q bandwidth=%q resolution=%q\n", res.Variant, res.Bandwidth, res.Resolution)
	}
	fmt.Fprintf(&out, "Segments:   %d\n", res.Segments)
	fmt.Fprintf(&out, "Bytes:      %s\n", FormatBytes(res.Bytes))
	fmt.Fprintf(&out, "Duration:   %s\n", FormatDuration(res.Duration))
	fmt.Fprintf(&out, "Merged:     %t\n", res.Merged)
	if !res.Success {
		fmt.Fprintf(&out, "Error:      %s: %s\n", res.ErrorKind, res.ErrorMsg)
	}

	return []byte(out.String()), nil
}

// FormatDuration formats a duration for human-readable output.
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.0fms", float64(d.Nanoseconds())/1e6)
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%.1fm", d.Minutes())
}

// FormatBytes formats bytes for human-readable output.
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// ExtractFlattenedData extracts data from nested structures for tabular
// output, e.g. turning a *Result into a flat key/value map for logging.
func ExtractFlattenedData(data any, prefix string) map[string]any {
	result := make(map[string]any)

	v := reflect.ValueOf(data)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Struct:
		t := v.Type()
		for i := 0; i < v.NumField(); i++ {
			field := v.Field(i)
			fieldType := t.Field(i)

			if !field.CanInterface() {
				continue
			}

			key := prefix + strings.ToLower(fieldType.Name)
			value := field.Interface()

			if field.Kind() == reflect.Struct || (field.Kind() == reflect.Ptr && !field.IsNil() && field.Elem().Kind() == reflect.Struct) {
				nested := ExtractFlattenedData(value, key+"_")
				maps.Copy(result, nested)
			} else {
				result[key] = value
			}
		}
	case reflect.Map:
		for _, key := range v.MapKeys() {
			keyStr := fmt.Sprintf("%v", key.Interface())
			value := v.MapIndex(key).Interface()

			flatKey := prefix + strings.ToLower(keyStr)
			if reflect.ValueOf(value).Kind() == reflect.Struct {
				nested := ExtractFlattenedData(value, flatKey+"_")
				maps.Copy(result, nested)
			} else {
				result[flatKey] = value
			}
		}
	default:
		result[prefix] = data
	}

	return result
}

// ConvertToStringMap converts various data types to string for CSV/table output.
func ConvertToStringMap(data map[string]any) map[string]string {
	result := make(map[string]string)

	for key, value := range data {
		result[key] = ConvertValueToString(value)
	}

	return result
}

// ConvertValueToString converts a single value to its string representation.
func ConvertValueToString(value any) string {
	if value == nil {
		return ""
	}

	switch v := value.(type) {
	case string:
		return v
	case int, int8, int16, int32, int64:
		return fmt.Sprintf("%d", v)
	case uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", v)
	case float32, float64:
		return strconv.FormatFloat(reflect.ValueOf(v).Float(), 'f', 3, 64)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		return v.Format(time.RFC3339)
	case time.Duration:
		return FormatDuration(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// ByName resolves a Formatter by its CLI-facing name, defaulting to table.
func ByName(name string) (Formatter, error) {
	switch strings.ToLower(name) {
	case "", "table":
		return &TableFormatter{}, nil
	case "json":
		return &JSONFormatter{}, nil
	case "yaml":
		return &YAMLFormatter{}, nil
	case "csv":
		return &CSVFormatter{}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q", name)
	}
}
