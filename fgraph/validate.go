// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package fgraph

// validate runs after every instance's setup callback has executed. It
// builds the set of resource names anyone writes (at any frame offset)
// and checks every read against it. External declarations count as
// written: their contents come from the host, so a purely-read imported
// resource (e.g. a sampled environment map) needs no in-graph writer.
func validate(insts []passInstance, rdecls []resourceDecl) error {
	declared := make(map[string]bool, len(rdecls))
	written := make(map[string]bool)
	for _, d := range rdecls {
		declared[d.name] = true
		if d.tex.IsExternal || d.buf.IsExternal {
			written[d.name] = true
		}
	}

	for _, inst := range insts {
		for _, w := range inst.writes {
			written[w.name] = true
		}
	}

	for _, inst := range insts {
		for _, r := range inst.reads {
			if !declared[r.name] {
				return newf(DanglingRead, "pass %q: read of undeclared resource %q", inst.name, r.name)
			}
			if (r.offset == Current || r.offset == Prev) && !written[r.name] {
				return newf(DanglingRead, "pass %q: %v read of %q has no writer", inst.name, r.offset, r.name)
			}
		}
	}
	return nil
}
