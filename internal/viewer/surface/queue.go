package surface

import "github.com/Faultbox/sonoir/internal/engine/scenegraph"

type pendingRelease struct {
	due       uint64
	materials []*scenegraph.Material
}

// releaseQueue defers releases by a number of rendered frames. It runs on the
// render goroutine only.
type releaseQueue struct {
	frame   uint64
	pending []pendingRelease
}

func (q *releaseQueue) schedule(delay int, mats []*scenegraph.Material) {
	if len(mats) == 0 {
		return
	}
	if delay < 1 {
		delay = 1
	}
	q.pending = append(q.pending, pendingRelease{
		due:       q.frame + uint64(delay),
		materials: mats,
	})
}

// advance counts one rendered frame and releases everything that has come due.
func (q *releaseQueue) advance(p *Pool) int {
	q.frame++
	n := 0
	kept := q.pending[:0]
	for _, r := range q.pending {
		if r.due > q.frame {
			kept = append(kept, r)
			continue
		}
		n += release(p, r)
	}
	q.pending = kept
	return n
}

// flush releases everything immediately.
func (q *releaseQueue) flush(p *Pool) int {
	n := 0
	for _, r := range q.pending {
		n += release(p, r)
	}
	q.pending = nil
	return n
}

func (q *releaseQueue) len() int {
	n := 0
	for _, r := range q.pending {
		n += len(r.materials)
	}
	return n
}

func release(p *Pool, r pendingRelease) int {
	for _, m := range r.materials {
		p.ReleaseMaterial(m)
	}
	return len(r.materials)
}
