// Package audiograph implements the AudioGraph: a typed node set
// addressed by id (not raw pointers), a set of connections, a computed
// processing order, and two scheduler modes.
package audiograph

import (
	"sync"

	"oscmix/internal/audionode"
	"oscmix/internal/oscerr"
)

// EngineState is the graph's overall run state.
type EngineState int

const (
	Idle EngineState = iota
	RunningState
)

// SchedulerMode selects how the graph's per-tick routine is driven.
type SchedulerMode int

const (
	HardwareDriven SchedulerMode = iota
	SoftClocked
)

// Connection is a directed edge (srcNode,srcPad) -> (dstNode,dstPad).
type Connection struct {
	SrcNode string
	SrcPad  int
	DstNode string
	DstPad  int
}

// Graph owns the node set (by id/name), the connection set, and the
// computed processing order.
type Graph struct {
	mu          sync.Mutex
	nodes       map[string]audionode.Node
	insertOrder []string
	conns       []Connection
	order       []string
	state       EngineState
	mode        SchedulerMode
	rate        int
	block       int

	soft *softScheduler
}

// New constructs an empty graph in the given scheduler mode. rate/block
// are only consulted in SoftClocked mode, to compute the ticker's target
// period (block/rate seconds); HardwareDriven mode takes its
// timing from the driver callback instead.
func New(mode SchedulerMode, rate, block int) *Graph {
	return &Graph{
		nodes: make(map[string]audionode.Node),
		mode:  mode,
		state: Idle,
		rate:  rate,
		block: block,
	}
}

func (g *Graph) softRateHint() int  { return g.rate }
func (g *Graph) softBlockHint() int { return g.block }

// AddNode registers a node by its Name. Adding/removing nodes requires
// the graph to be stopped.
func (g *Graph) AddNode(n audionode.Node) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != Idle {
		return oscerr.New(oscerr.State, "AddNode", "graph must be stopped to add nodes")
	}
	if _, exists := g.nodes[n.Name()]; exists {
		return oscerr.New(oscerr.Config, "AddNode", "duplicate node name: "+n.Name())
	}
	g.nodes[n.Name()] = n
	g.insertOrder = append(g.insertOrder, n.Name())
	return nil
}

// Node looks up a node by id.
func (g *Graph) Node(name string) (audionode.Node, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	n, ok := g.nodes[name]
	return n, ok
}

// Connect validates and records a connection. Fan-out (one output to many
// inputs) is allowed; fan-in (one input pad fed by more than one source) is
// not.
func (g *Graph) Connect(c Connection) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != Idle {
		return oscerr.New(oscerr.State, "Connect", "graph must be stopped to add connections")
	}
	src, ok := g.nodes[c.SrcNode]
	if !ok {
		return oscerr.New(oscerr.Config, "Connect", "unknown src node: "+c.SrcNode)
	}
	dst, ok := g.nodes[c.DstNode]
	if !ok {
		return oscerr.New(oscerr.Config, "Connect", "unknown dst node: "+c.DstNode)
	}
	if c.SrcPad < 0 || c.SrcPad >= src.OutputPads() {
		return oscerr.New(oscerr.Config, "Connect", "src pad out of range")
	}
	if c.DstPad < 0 || c.DstPad >= dst.InputPads() {
		return oscerr.New(oscerr.Config, "Connect", "dst pad out of range")
	}
	for _, existing := range g.conns {
		if existing.DstNode == c.DstNode && existing.DstPad == c.DstPad {
			return oscerr.New(oscerr.Config, "Connect", "fan-in not allowed on "+c.DstNode)
		}
	}
	g.conns = append(g.conns, c)
	return nil
}

// category returns the tie-break priority: sources first, processors
// second, sinks last.
func category(t audionode.Type) int {
	switch t {
	case audionode.TypeAsioSource, audionode.TypeFileSource:
		return 0
	case audionode.TypeAsioSink, audionode.TypeFileSink:
		return 2
	default:
		return 1
	}
}

// computeOrder performs a topological sort of the node set using the
// connection set as edges, breaking ties first by category (source <
// processor < sink) and then by insertion order.
func (g *Graph) computeOrder() ([]string, error) {
	indegree := make(map[string]int, len(g.nodes))
	adj := make(map[string][]string, len(g.nodes))
	for name := range g.nodes {
		indegree[name] = 0
	}
	for _, c := range g.conns {
		adj[c.SrcNode] = append(adj[c.SrcNode], c.DstNode)
		indegree[c.DstNode]++
	}

	rank := make(map[string]int, len(g.insertOrder))
	for i, name := range g.insertOrder {
		rank[name] = i
	}

	var ready []string
	for name := range g.nodes {
		if indegree[name] == 0 {
			ready = append(ready, name)
		}
	}

	var order []string
	for len(ready) > 0 {
		// Pick the lowest (category, insertion rank) among ready nodes.
		bestIdx := 0
		for i := 1; i < len(ready); i++ {
			if lessReady(g, rank, ready[i], ready[bestIdx]) {
				bestIdx = i
			}
		}
		name := ready[bestIdx]
		ready = append(ready[:bestIdx], ready[bestIdx+1:]...)
		order = append(order, name)

		for _, next := range adj[name] {
			indegree[next]--
			if indegree[next] == 0 {
				ready = append(ready, next)
			}
		}
	}

	if len(order) != len(g.nodes) {
		return nil, oscerr.New(oscerr.Config, "computeOrder", "graph contains a cycle or is not fully connected")
	}
	return order, nil
}

func lessReady(g *Graph, rank map[string]int, a, b string) bool {
	ca := category(g.nodes[a].Type())
	cb := category(g.nodes[b].Type())
	if ca != cb {
		return ca < cb
	}
	return rank[a] < rank[b]
}

// Start computes the processing order, starts every node, and (in
// HardwareDriven mode) leaves driver wiring to the caller; in SoftClocked
// mode it launches the ticker goroutine.
func (g *Graph) Start() error {
	g.mu.Lock()
	if g.state != Idle {
		g.mu.Unlock()
		return oscerr.New(oscerr.State, "Start", "graph already running")
	}
	order, err := g.computeOrder()
	if err != nil {
		g.mu.Unlock()
		return err
	}
	g.order = order
	for _, name := range order {
		if !g.nodes[name].Start() {
			g.mu.Unlock()
			return oscerr.New(oscerr.Resource, "Start", "node failed to start: "+name+": "+g.nodes[name].LastError())
		}
	}
	g.state = RunningState
	mode := g.mode
	g.mu.Unlock()

	if mode == SoftClocked {
		g.soft = newSoftScheduler(g)
		g.soft.start()
	}
	return nil
}

// Tick runs one iteration of the per-tick routine: process every node in
// order except AsioSource and AsioSink, then transfer buffers along every
// connection in declaration order. Tick never calls AsioSource.Receive or
// AsioSink.Provide; in HardwareDriven mode the caller invokes those itself
// around Tick.
func (g *Graph) Tick() {
	g.mu.Lock()
	order := g.order
	conns := g.conns
	nodes := g.nodes
	g.mu.Unlock()

	for _, name := range order {
		n := nodes[name]
		if n.Type() == audionode.TypeAsioSource || n.Type() == audionode.TypeAsioSink {
			continue
		}
		if !n.Process() {
			// Non-fatal: logged by caller via LastError; graph continues.
			continue
		}
	}

	for _, c := range conns {
		src := nodes[c.SrcNode]
		dst := nodes[c.DstNode]
		buf := src.Output(c.SrcPad)
		dst.SetInput(c.DstPad, buf)
	}
}

// Stop is idempotent: it signals the soft ticker if any, waits for it
// to exit, then stops every node in reverse processing order.
func (g *Graph) Stop() {
	g.mu.Lock()
	if g.state != RunningState {
		g.mu.Unlock()
		return
	}
	order := g.order
	soft := g.soft
	g.mu.Unlock()

	if soft != nil {
		soft.stop()
	}

	for i := len(order) - 1; i >= 0; i-- {
		g.nodes[order[i]].Stop()
	}

	g.mu.Lock()
	g.state = Idle
	g.soft = nil
	g.mu.Unlock()
}

// State reports the graph's current engine state.
func (g *Graph) State() EngineState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Order returns the computed processing order (for tests/diagnostics).
func (g *Graph) Order() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// allFileSourcesFinished reports whether every FileSource node in the graph
// has reached EOF with loop=false, for SoftClocked self-termination.
func (g *Graph) allFileSourcesFinished() bool {
	any := false
	for _, name := range g.insertOrder {
		n := g.nodes[name]
		fs, ok := n.(*audionode.FileSource)
		if !ok {
			continue
		}
		any = true
		if !fs.Finished() {
			return false
		}
	}
	return any
}
