package attendees

import (
	"encoding/csv"
	"io"

	"github.com/swiftcheck/backend/internal/models"
)

// CSVFilename is the attachment name for dashboard exports.
const CSVFilename = "swiftcheck_attendees.csv"

const csvTimeLayout = "2006-01-02 15:04:05"

// WriteCSV writes the attendee export: one header row, then one row per
// attendee with ID, Name, Email, Checked In, Check-in Time, Registered At.
// Unset timestamps render as N/A; quoting (doubled quotes inside names) is
// handled by the csv writer.
func WriteCSV(w io.Writer, list []models.Attendee) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"ID", "Name", "Email", "Checked In", "Check-in Time", "Registered At"}); err != nil {
		return err
	}
	for i := range list {
		att := &list[i]
		checkedIn := "No"
		if att.CheckedIn {
			checkedIn = "Yes"
		}
		checkInTime := "N/A"
		if att.CheckInTime != nil {
			checkInTime = att.CheckInTime.Format(csvTimeLayout)
		}
		registeredAt := "N/A"
		if !att.CreatedAt.IsZero() {
			registeredAt = att.CreatedAt.Format(csvTimeLayout)
		}
		row := []string{att.ID.String(), att.Name, att.Email, checkedIn, checkInTime, registeredAt}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
