package channel

import (
	"sort"

	"fieldbus-engine/pkg/config"
	"fieldbus-engine/pkg/pdu"
)

// pointGroup is a batch of readable points served by one request:
// same function code, contiguous addresses, within the protocol's
// per-request maximum.
type pointGroup struct {
	function pdu.FunctionCode
	start    uint16
	count    uint16 // registers or bits, per function
	points   []config.Point
}

// readFunction maps a point to the read function code that serves it
func readFunction(p config.Point) pdu.FunctionCode {
	switch {
	case p.Type == config.TypeCoil:
		return pdu.FuncReadCoils
	case p.Type == config.TypeDiscrete:
		return pdu.FuncReadDiscreteInputs
	case p.Space == config.SpaceInput:
		return pdu.FuncReadInputRegisters
	default:
		return pdu.FuncReadHoldingRegisters
	}
}

// pointWidth returns how many addressable units (bits or registers)
// the point occupies in its table.
func pointWidth(p config.Point) uint16 {
	if p.Type.IsBit() {
		return 1
	}
	return p.Type.RegisterCount()
}

// buildGroups batches the readable points of a channel into request
// groups. Points are bucketed by function code, sorted by address, and
// merged while they stay contiguous (no address gap) and the group
// stays within the protocol limit. The heuristic is deliberately
// simple; correctness only requires that no group crosses a gap or the
// per-request maximum.
func buildGroups(points []config.Point) []pointGroup {
	buckets := make(map[pdu.FunctionCode][]config.Point)
	for _, p := range points {
		if !p.Access.CanRead() {
			continue
		}
		fc := readFunction(p)
		buckets[fc] = append(buckets[fc], p)
	}

	var groups []pointGroup
	for _, fc := range []pdu.FunctionCode{
		pdu.FuncReadCoils, pdu.FuncReadDiscreteInputs,
		pdu.FuncReadHoldingRegisters, pdu.FuncReadInputRegisters,
	} {
		bucket := buckets[fc]
		if len(bucket) == 0 {
			continue
		}
		sort.Slice(bucket, func(i, j int) bool {
			return bucket[i].Address < bucket[j].Address
		})

		limit := uint16(pdu.MaxReadRegisters)
		if fc.IsBitAccess() {
			limit = pdu.MaxReadBits
		}

		current := pointGroup{function: fc, start: bucket[0].Address}
		for _, p := range bucket {
			end := current.start + current.count
			span := p.Address + pointWidth(p) - current.start

			if len(current.points) > 0 && (p.Address > end || span > limit) {
				groups = append(groups, current)
				current = pointGroup{function: fc, start: p.Address}
			}
			current.points = append(current.points, p)
			if newCount := p.Address + pointWidth(p) - current.start; newCount > current.count {
				current.count = newCount
			}
		}
		groups = append(groups, current)
	}
	return groups
}
