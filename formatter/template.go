package formatter

import (
	"bytes"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Indosaram/logxide/core"
)

// TemplateFormatter expands a template against the record's reserved
// fields and extras. Templates are compiled once at construction;
// formatting a record is a walk over pre-parsed segments.
type TemplateFormatter struct {
	raw      string
	dateFmt  string
	segments []segment
}

// segment is either a literal chunk or a field reference with
// optional padding.
type segment struct {
	literal   string
	field     string
	leftAlign bool
	zeroPad   bool
	width     int
}

var (
	percentRe = regexp.MustCompile(`%\((\w+)\)(-?)(0?)(\d*)[sdf]|%%`)
	braceRe   = regexp.MustCompile(`\{(\w+)\}`)
	dollarRe  = regexp.MustCompile(`\$\{(\w+)\}|\$(\w+)`)
)

// New compiles a template in the given style. An empty format string
// yields the default template.
func New(format, dateFmt string, style Style) *TemplateFormatter {
	if format == "" {
		format = DefaultFormat
		style = StylePercent
	}
	f := &TemplateFormatter{raw: format, dateFmt: dateFmt}

	var re *regexp.Regexp
	switch style {
	case StyleBrace:
		re = braceRe
	case StyleDollar:
		re = dollarRe
	default:
		re = percentRe
	}

	prev := 0
	for _, m := range re.FindAllStringSubmatchIndex(format, -1) {
		if m[0] > prev {
			f.segments = append(f.segments, segment{literal: format[prev:m[0]]})
		}
		prev = m[1]

		if style == StylePercent {
			if m[2] < 0 { // the %% escape
				f.segments = append(f.segments, segment{literal: "%"})
				continue
			}
			seg := segment{
				field:     format[m[2]:m[3]],
				leftAlign: m[4] >= 0 && m[5] > m[4],
				zeroPad:   m[6] >= 0 && m[7] > m[6],
			}
			if m[8] >= 0 && m[9] > m[8] {
				seg.width, _ = strconv.Atoi(format[m[8]:m[9]])
			}
			f.segments = append(f.segments, seg)
			continue
		}

		// Brace and dollar styles carry the name in the first
		// non-empty capture group.
		for g := 2; g < len(m); g += 2 {
			if m[g] >= 0 {
				f.segments = append(f.segments, segment{field: format[m[g]:m[g+1]]})
				break
			}
		}
	}
	if prev < len(format) {
		f.segments = append(f.segments, segment{literal: format[prev:]})
	}
	return f
}

// Default returns a percent-style formatter with the default
// template and date format.
func Default() *TemplateFormatter {
	return New(DefaultFormat, "", StylePercent)
}

// Format expands the template. A reference to a field that exists
// neither as a reserved attribute nor in the record's extras degrades
// to the raw resolved message, as does any internal panic.
func (f *TemplateFormatter) Format(r *core.Record) (out string) {
	defer func() {
		if recover() != nil {
			out = r.Message()
		}
	}()

	buf := getBuffer()
	defer putBuffer(buf)

	for _, seg := range f.segments {
		if seg.field == "" {
			buf.WriteString(seg.literal)
			continue
		}
		val, ok := f.fieldValue(r, seg.field)
		if !ok {
			return r.Message()
		}
		writePadded(buf, val, seg)
	}
	return buf.String()
}

// writePadded writes val honoring the segment's width and alignment.
func writePadded(buf *bytes.Buffer, val string, seg segment) {
	pad := seg.width - len(val)
	if pad <= 0 {
		buf.WriteString(val)
		return
	}
	if seg.leftAlign {
		buf.WriteString(val)
		writeRepeated(buf, ' ', pad)
		return
	}
	fill := byte(' ')
	if seg.zeroPad {
		fill = '0'
	}
	writeRepeated(buf, fill, pad)
	buf.WriteString(val)
}

func writeRepeated(buf *bytes.Buffer, c byte, n int) {
	for i := 0; i < n; i++ {
		buf.WriteByte(c)
	}
}

// fieldValue resolves a template field name against the record. The
// reserved attribute set takes precedence over extra fields of the
// same name.
func (f *TemplateFormatter) fieldValue(r *core.Record, name string) (string, bool) {
	switch name {
	case "name":
		return r.Name, true
	case "levelno":
		return strconv.Itoa(int(r.LevelNo)), true
	case "levelname":
		return r.LevelName, true
	case "msg":
		return r.Msg, true
	case "message":
		return r.Message(), true
	case "asctime":
		return f.asctime(r), true
	case "created":
		created := float64(r.Created.UnixNano()) / float64(time.Second)
		return strconv.FormatFloat(created, 'f', 6, 64), true
	case "msecs":
		return strconv.Itoa(r.Msecs), true
	case "relativeCreated":
		return strconv.FormatFloat(r.RelativeCreated.Seconds()*1000, 'f', 6, 64), true
	case "thread":
		return strconv.FormatUint(r.Goroutine, 10), true
	case "threadName":
		return r.GoroutineName, true
	case "process":
		return strconv.Itoa(r.Process), true
	case "processName":
		return r.ProcessName, true
	case "pathname":
		return r.Pathname, true
	case "filename":
		return r.Filename, true
	case "module":
		return strings.TrimSuffix(r.Filename, filepath.Ext(r.Filename)), true
	case "lineno":
		return strconv.Itoa(r.Lineno), true
	case "funcName":
		return r.FuncName, true
	case "exc_text":
		return r.ExcText, true
	}
	if v, ok := r.Extra[name]; ok {
		return fmt.Sprint(v), true
	}
	return "", false
}

// asctime formats the record timestamp. The default format carries a
// comma-separated millisecond suffix; an explicit date format is
// applied verbatim.
func (f *TemplateFormatter) asctime(r *core.Record) string {
	if f.dateFmt != "" {
		return r.Created.Format(f.dateFmt)
	}
	return r.Created.Format(DefaultDateFormat) + "," + fmt.Sprintf("%03d", r.Msecs)
}
