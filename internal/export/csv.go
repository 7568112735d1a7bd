// Package export renders weather history as CSV.
package export

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/weatherlog/backend/internal/domain"
	"github.com/weatherlog/backend/pkg/utils"
)

// Header is the first line of every export
const Header = "id,city,country,start_date,end_date,temperature,description,icon,created_at"

// Filename is suggested to browsers in Content-Disposition
const Filename = "weather_export.csv"

// WriteCSV writes the header followed by one row per record, in the given order.
// city, country and description are always quoted; the other columns never
// contain commas or quotes.
func WriteCSV(w io.Writer, records []domain.WeatherRecord) error {
	bw := bufio.NewWriter(w)

	if _, err := bw.WriteString(Header + "\n"); err != nil {
		return fmt.Errorf("export: failed to write header: %w", err)
	}

	for _, r := range records {
		fields := []string{
			strconv.FormatInt(r.ID, 10),
			quote(r.City),
			quote(domain.StringValue(r.Country)),
			domain.StringValue(r.StartDate),
			domain.StringValue(r.EndDate),
			utils.FormatDecimal(r.Temperature),
			quote(r.Description),
			domain.StringValue(r.Icon),
			r.CreatedAt.UTC().Format(time.RFC3339),
		}
		if _, err := bw.WriteString(strings.Join(fields, ",") + "\n"); err != nil {
			return fmt.Errorf("export: failed to write record %d: %w", r.ID, err)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("export: failed to flush: %w", err)
	}
	return nil
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
