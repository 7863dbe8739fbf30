package watermark

import "image"

// axisRef selects which edge of the image a layer is aligned to on one axis.
type axisRef int

const (
	nearEdge axisRef = iota // left or top
	midpoint                // centered
	farEdge                 // right or bottom, aligned by the layer's far edge
)

type anchorRule struct {
	x, y axisRef
	// safe reports whether the shadow safety margin is added to the margin.
	safe bool
}

var anchorTable = map[Position]anchorRule{
	TopLeft:      {x: nearEdge, y: nearEdge, safe: true},
	TopRight:     {x: farEdge, y: nearEdge, safe: true},
	BottomLeft:   {x: nearEdge, y: farEdge, safe: true},
	BottomRight:  {x: farEdge, y: farEdge, safe: true},
	Center:       {x: midpoint, y: midpoint},
	CenterBottom: {x: midpoint, y: farEdge},
}

// ResolveAnchor returns the top-left pixel at which a layer of the given
// size is placed on an image of size img.
//
// Right and bottom anchors subtract the full layer extent from the image
// edge, so layers of different sizes share the same far edge. safety is
// added to the margin for corner anchors; graphic marks pass 0. The result
// is not clamped: large margins or offsets may move the layer partly or
// fully outside the image. An unknown position is treated as center.
func ResolveAnchor(img, layer image.Point, spec AnchorSpec, safety int) image.Point {
	rule, ok := anchorTable[spec.Position]
	if !ok {
		rule = anchorTable[Center]
	}
	if !rule.safe {
		safety = 0
	}
	return image.Point{
		X: place(rule.x, img.X, layer.X, spec.Margin+safety) + spec.XOffset,
		Y: place(rule.y, img.Y, layer.Y, spec.Margin+safety) + spec.YOffset,
	}
}

func place(ref axisRef, imgExt, layerExt, inset int) int {
	switch ref {
	case nearEdge:
		return inset
	case farEdge:
		return imgExt - layerExt - inset
	default:
		return floorDiv(imgExt-layerExt, 2)
	}
}

// floorDiv divides rounding toward negative infinity, so layers larger than
// the image are centered consistently.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
