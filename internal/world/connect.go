package world

import "sort"

// roomEdge is a candidate corridor between two rooms.
type roomEdge struct {
	From, To int     // Room indices
	Weight   float64 // Center-to-center distance
}

// connectRooms connects rooms with corridors according to the layout.
func (g *Generator) connectRooms() {
	if len(g.rooms) < 2 {
		return
	}

	switch g.spec.LayoutStyle {
	case LayoutLinear:
		for i := 1; i < len(g.rooms); i++ {
			g.carveCorridor(g.rooms[i-1], g.rooms[i])
		}
	case LayoutHub:
		for i := 1; i < len(g.rooms); i++ {
			g.carveCorridor(g.rooms[0], g.rooms[i])
		}
	default:
		mst, extra := g.spanningEdges()
		for _, e := range mst {
			g.carveCorridor(g.rooms[e.From], g.rooms[e.To])
		}
		for _, e := range extra {
			g.carveCorridor(g.rooms[e.From], g.rooms[e.To])
		}
	}
}

// spanningEdges runs Kruskal over the complete room graph and returns the
// minimum spanning tree plus the non-tree edges that won the loop roll.
func (g *Generator) spanningEdges() (mst, extra []roomEdge) {
	edges := make([]roomEdge, 0, len(g.rooms)*(len(g.rooms)-1)/2)
	for i := 0; i < len(g.rooms); i++ {
		for j := i + 1; j < len(g.rooms); j++ {
			edges = append(edges, roomEdge{From: i, To: j, Weight: centerDistance(g.rooms[i], g.rooms[j])})
		}
	}
	sort.SliceStable(edges, func(a, b int) bool {
		return edges[a].Weight < edges[b].Weight
	})

	uf := newUnionFind(len(g.rooms))
	var rest []roomEdge
	for _, e := range edges {
		if uf.union(e.From, e.To) {
			mst = append(mst, e)
		} else {
			rest = append(rest, e)
		}
	}

	for _, e := range rest {
		if g.rng.Bool(extraEdgeChance) {
			extra = append(extra, e)
		}
	}
	return mst, extra
}

// unionFind is a disjoint-set forest over room indices.
type unionFind struct {
	parent []int
	rank   []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n), rank: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

func (uf *unionFind) find(x int) int {
	if uf.parent[x] != x {
		uf.parent[x] = uf.find(uf.parent[x])
	}
	return uf.parent[x]
}

// union merges the sets of x and y, returning false if already joined.
func (uf *unionFind) union(x, y int) bool {
	rootX, rootY := uf.find(x), uf.find(y)
	if rootX == rootY {
		return false
	}
	if uf.rank[rootX] < uf.rank[rootY] {
		rootX, rootY = rootY, rootX
	}
	uf.parent[rootY] = rootX
	if uf.rank[rootX] == uf.rank[rootY] {
		uf.rank[rootX]++
	}
	return true
}

// carveCorridor creates an L-shaped corridor between two room centers.
func (g *Generator) carveCorridor(room1, room2 Room) {
	x1, y1 := room1.Center()
	x2, y2 := room2.Center()

	// Randomly choose to go horizontal-then-vertical or vertical-then-horizontal
	if g.rng.Bool(0.5) {
		g.carveHorizontalTunnel(x1, x2, y1)
		g.carveVerticalTunnel(y1, y2, x2)
	} else {
		g.carveVerticalTunnel(y1, y2, x1)
		g.carveHorizontalTunnel(x1, x2, y2)
	}
}

// carveHorizontalTunnel carves a horizontal tunnel.
func (g *Generator) carveHorizontalTunnel(x1, x2, y int) {
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	for x := x1; x <= x2; x++ {
		g.carveCorridorTile(x, y)
	}
}

// carveVerticalTunnel carves a vertical tunnel.
func (g *Generator) carveVerticalTunnel(y1, y2, x int) {
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	for y := y1; y <= y2; y++ {
		g.carveCorridorTile(x, y)
	}
}

// carveCorridorTile turns an interior wall into corridor floor. Tiles owned
// by a room are left alone.
func (g *Generator) carveCorridorTile(x, y int) {
	if x <= 0 || x >= g.m.Width-1 || y <= 0 || y >= g.m.Height-1 {
		return
	}
	t := g.m.TileAt(x, y)
	if t.RoomID != "" {
		return
	}
	t.Terrain = TerrainFloor
	t.RoomType = RoomCorridor
}
