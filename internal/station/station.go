// Package station loads the reference table of weather stations that
// measurement files are sampled from.
package station

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pingcap/errors"
)

// DefaultPath is where the generator looks for the reference table.
const DefaultPath = "../weather_stations.csv"

// READ_BUF bounds a single reference line.
const READ_BUF = 1024 * 64

// ErrMalformedValue is returned when a line's value part is not a number.
var ErrMalformedValue = errors.New("malformed station value")

// Station is one reference record: a name and its mean temperature.
type Station struct {
	Name  string
	Value float32
}

// Load opens path and parses it with Parse.
func Load(path string) ([]Station, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Annotatef(err, "open stations file '%s'", path)
	}
	defer file.Close()

	stations, err := Parse(file)
	if err != nil {
		return nil, errors.Annotatef(err, "read stations file '%s'", path)
	}
	return stations, nil
}

// Parse reads name;value lines from r in order. Lines without a ';' are
// treated as comments and skipped, wherever they appear.
func Parse(r io.Reader) ([]Station, error) {
	var stations []Station
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 4096), READ_BUF)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := scanner.Text()
		name, value, ok := strings.Cut(line, ";")
		if !ok {
			continue
		}

		v, err := strconv.ParseFloat(value, 32)
		if err != nil {
			return nil, errors.Annotatef(ErrMalformedValue, "line %d: %q", lineNo, value)
		}
		stations = append(stations, Station{Name: name, Value: float32(v)})
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.Annotate(err, "scan line")
	}
	return stations, nil
}

// String renders the station as a measurement line without the newline.
func (s Station) String() string {
	return string(s.AppendLine(nil))
}

// AppendLine appends "name;value" to buf. The value uses the shortest
// text that reads back as the same float32.
func (s Station) AppendLine(buf []byte) []byte {
	buf = append(buf, s.Name...)
	buf = append(buf, ';')
	return strconv.AppendFloat(buf, float64(s.Value), 'f', -1, 32)
}
