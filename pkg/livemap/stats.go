package livemap

import (
	"fmt"

	"github.com/travigo/fleettrack/pkg/elastic_client"
)

func indexCycleReport(report CycleReport) {
	elastic_client.IndexDocument(fmt.Sprintf("fleettrack-live-cycles-%d-%02d", report.Timestamp.Year(), report.Timestamp.Month()), report)
}
