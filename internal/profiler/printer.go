package profiler

import "strings"

// DefaultMaxRetainersPerLine caps the number of retaining clusters printed
// on one report line.
const DefaultMaxRetainersPerLine = 32

// ellipsis marks truncated retainer lists.
const ellipsis = ",..."

// PrintStats coarsens the retainer graph and emits one line per
// representative cluster through the sink. Clusters subsumed by another
// representative are reported under it instead of on their own line.
func (p *RetainerProfile) PrintStats(sink Sink) {
	p.coarser.Process(p.retainers)
	maxRetainers := p.cfg.MaxRetainersPerLine
	if maxRetainers <= 0 {
		maxRetainers = DefaultMaxRetainersPerLine
	}
	p.retainers.ForEach(func(cluster Cluster, retainers *clusterSet) {
		if p.coarser.HasEquivalent(cluster) {
			return
		}
		sink.Retainers(p.formatLine(cluster, retainers, maxRetainers))
	})
}

// formatLine renders "Cluster,RetainerA,RetainerB,...". Retaining clusters
// are mapped through the equivalence table and deduplicated per line;
// reaching the cap appends a single ellipsis marker and suppresses the
// rest.
func (p *RetainerProfile) formatLine(cluster Cluster, retainers *clusterSet, maxRetainers int) string {
	var line strings.Builder
	line.WriteString(cluster.String())
	coarsePrinted := make(map[Cluster]struct{})
	printed := 0
	retainers.ForEach(func(r Cluster) {
		if printed >= maxRetainers {
			if printed == maxRetainers {
				line.WriteString(ellipsis)
				printed++ // avoid printing the ellipsis next time
			}
			return
		}
		eq := p.coarser.GetEquivalent(r)
		if eq.IsNull() {
			line.WriteByte(',')
			line.WriteString(r.String())
			printed++
			return
		}
		if _, dup := coarsePrinted[eq]; dup {
			return
		}
		coarsePrinted[eq] = struct{}{}
		line.WriteByte(',')
		line.WriteString(eq.String())
		printed++
	})
	return line.String()
}
