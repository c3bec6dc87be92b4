package schedule

import (
	"time"

	"github.com/beevik/etree"

	"github.com/orvane/libsched/instant"
	"github.com/orvane/libsched/interval"
)

// BuildFreeBusyReport renders an aggregated busy set as an XML document
// for the presentation layer:
//
//	<free-busy start="..." end="...">
//	  <busy start="..." end="..."/>
//	  ...
//	  <free start="..." end="..."/>
//	  ...
//	</free-busy>
//
// busy must be an Aggregate result for the same window; the free
// elements are derived from it via FreeWithin. Timestamps are RFC 3339
// in UTC.
func BuildFreeBusyReport(window interval.Interval, busy []interval.Interval) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("free-busy")
	root.CreateAttr("start", formatStamp(window.Start))
	root.CreateAttr("end", formatStamp(window.End))

	for _, iv := range busy {
		elem := root.CreateElement("busy")
		elem.CreateAttr("start", formatStamp(iv.Start))
		elem.CreateAttr("end", formatStamp(iv.End))
	}
	for _, iv := range FreeWithin(busy, window) {
		elem := root.CreateElement("free")
		elem.CreateAttr("start", formatStamp(iv.Start))
		elem.CreateAttr("end", formatStamp(iv.End))
	}

	doc.Indent(2)
	return doc
}

func formatStamp(i instant.Instant) string {
	return i.Time().Format(time.RFC3339)
}
