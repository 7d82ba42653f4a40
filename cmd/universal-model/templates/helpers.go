package templates

import (
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

type Report struct {
	Store     string
	Generated time.Time
	Iters     int
	Rows      []ReportRow
}

type ReportRow struct {
	Consumers  int
	Burst      int
	Avg        time.Duration
	P99        time.Duration
	Max        time.Duration
	Deliveries int64
	Rate       float64
}

func (r ReportRow) Name() string {
	return strconv.Itoa(r.Consumers) + " consumers * " + strconv.Itoa(r.Burst) + " writes"
}

func rate(r float64) string {
	return humanize.Commaf(float64(int64(r))) + "/s"
}

func cells(values ...string) string {
	var sb strings.Builder
	sb.WriteString("|")
	for _, v := range values {
		sb.WriteString(" ")
		sb.WriteString(v)
		sb.WriteString(" |")
	}
	return sb.String()
}
