// Package annotate draws detections, zones and alarm state onto video frames.
package annotate

import (
	"fmt"
	"image"
	"image/color"
	"zoneguard/internal/detection"
	"zoneguard/internal/geometry"

	"gocv.io/x/gocv"
)

// AlarmFillAlpha is the opacity of the red fill over an alarmed zone.
const AlarmFillAlpha = 0.15

const (
	AlarmText  = "ALARM! Leave"
	BannerText = "INTRUSION DETECTED"
	PausedText = "PAUSED - drawing available from the control panel"
	HelpText   = "Draw, load, save or reset zones from the control panel"
)

var (
	personColor   = color.RGBA{G: 255, A: 255}
	centroidColor = color.RGBA{B: 255, A: 255}
	zoneColor     = color.RGBA{R: 255, A: 255}
	draftColor    = color.RGBA{R: 255, G: 255, A: 255}
	helpColor     = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	pausedColor   = color.RGBA{R: 200, G: 200, B: 200, A: 255}
)

// Scene is everything drawn on top of one frame.
type Scene struct {
	Persons []detection.Result
	Zones   []geometry.Polygon
	Alarms  []bool // parallel to Zones
	Draft   geometry.Polygon
	Drawing bool
	Paused  bool
}

// AnyAlarm reports whether at least one zone is alarmed.
func (s Scene) AnyAlarm() bool {
	for _, on := range s.Alarms {
		if on {
			return true
		}
	}
	return false
}

func (s Scene) alarmed(i int) bool {
	return i < len(s.Alarms) && s.Alarms[i]
}

// Draw renders the scene onto frame in place. Alarm fills go first so that
// outlines, labels and boxes stay readable on top of them.
func Draw(frame *gocv.Mat, scene Scene) {
	if frame.Empty() {
		return
	}

	for i, zone := range scene.Zones {
		if scene.alarmed(i) {
			fillZone(frame, zone)
		}
	}

	for i, zone := range scene.Zones {
		drawZone(frame, i, zone)
		if scene.alarmed(i) {
			gocv.PutText(frame, AlarmText, AlarmTextOrigin(zone), gocv.FontHersheySimplex, 1.0, zoneColor, 3)
		}
	}

	for _, p := range scene.Persons {
		drawPerson(frame, p)
	}

	if scene.Drawing {
		drawDraft(frame, scene.Draft)
	}

	if scene.AnyAlarm() {
		drawBanner(frame)
	}

	if scene.Paused {
		gocv.PutText(frame, PausedText, image.Pt(10, 30), gocv.FontHersheySimplex, 0.6, pausedColor, 2)
	}

	gocv.PutText(frame, HelpText, image.Pt(10, frame.Rows()-10), gocv.FontHersheySimplex, 0.5, helpColor, 1)
}

// ZoneLabel is the on-frame name of the zone at index i.
func ZoneLabel(i int) string {
	return fmt.Sprintf("Zone %d", i+1)
}

// PersonLabel is the text drawn above a person box.
func PersonLabel(r detection.Result) string {
	return fmt.Sprintf("person %.2f", r.Confidence)
}

// AlarmTextOrigin places the alarm text roughly centred on the zone.
func AlarmTextOrigin(zone geometry.Polygon) image.Point {
	c := zone.Centroid()
	return image.Pt(c.X-40, c.Y)
}

func drawZone(frame *gocv.Mat, i int, zone geometry.Polygon) {
	pv := gocv.NewPointsVectorFromPoints([][]image.Point{zone.ImagePoints()})
	defer pv.Close()

	gocv.Polylines(frame, pv, true, zoneColor, 2)
	gocv.PutText(frame, ZoneLabel(i), zone.Centroid().ImagePoint(), gocv.FontHersheySimplex, 0.6, zoneColor, 2)
}

func fillZone(frame *gocv.Mat, zone geometry.Polygon) {
	overlay := frame.Clone()
	defer overlay.Close()

	pv := gocv.NewPointsVectorFromPoints([][]image.Point{zone.ImagePoints()})
	defer pv.Close()

	gocv.FillPoly(&overlay, pv, zoneColor)
	gocv.AddWeighted(overlay, AlarmFillAlpha, *frame, 1.0-AlarmFillAlpha, 0, frame)
}

func drawPerson(frame *gocv.Mat, p detection.Result) {
	rect := p.Box.Rect()
	gocv.Rectangle(frame, rect, personColor, 2)
	gocv.Circle(frame, p.Box.Centroid().ImagePoint(), 4, centroidColor, -1)
	gocv.PutText(frame, PersonLabel(p), image.Pt(rect.Min.X, rect.Min.Y-6), gocv.FontHersheySimplex, 0.5, personColor, 1)
}

func drawDraft(frame *gocv.Mat, draft geometry.Polygon) {
	for i, p := range draft {
		gocv.Circle(frame, p.ImagePoint(), 4, draftColor, -1)
		if i > 0 {
			gocv.Line(frame, draft[i-1].ImagePoint(), p.ImagePoint(), draftColor, 2)
		}
	}
}

func drawBanner(frame *gocv.Mat) {
	size := gocv.GetTextSize(BannerText, gocv.FontHersheySimplex, 1.0, 2)
	x := (frame.Cols() - size.X) / 2
	if x < 0 {
		x = 0
	}
	bar := image.Rect(0, 40, frame.Cols(), 50+size.Y+10)
	gocv.Rectangle(frame, bar, zoneColor, -1)
	gocv.PutText(frame, BannerText, image.Pt(x, 50+size.Y), gocv.FontHersheySimplex, 1.0, helpColor, 2)
}
