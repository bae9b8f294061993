package contract

// EachSchema calls fn for every schema node reachable by structural descent
// from c: component schemas, response and parameter schemas, and the schemas
// inside every operation. $ref targets are not followed.
func (c *Contract) EachSchema(fn func(*Schema)) {
	for _, item := range c.Paths.All() {
		if item == nil {
			continue
		}
		for _, p := range item.Parameters {
			p.eachSchema(fn)
		}
		for _, m := range Methods {
			op := item.Operation(m)
			if op == nil {
				continue
			}
			for _, p := range op.Parameters {
				p.eachSchema(fn)
			}
			if op.RequestBody != nil {
				eachContentSchema(op.RequestBody.Content, fn)
			}
			for _, r := range op.Responses.All() {
				r.eachSchema(fn)
			}
		}
	}
	for _, s := range c.Components.Schemas.All() {
		s.Each(fn)
	}
	for _, r := range c.Components.Responses.All() {
		r.eachSchema(fn)
	}
	for _, p := range c.Components.Parameters.All() {
		p.eachSchema(fn)
	}
}

// Each calls fn for s and every nested schema, depth first.
func (s *Schema) Each(fn func(*Schema)) {
	if s == nil {
		return
	}
	fn(s)
	for _, p := range s.Properties.All() {
		p.Each(fn)
	}
	s.Items.Each(fn)
	s.AdditionalProperties.Each(fn)
	for _, group := range [][]*Schema{s.AllOf, s.AnyOf, s.OneOf} {
		for _, sub := range group {
			sub.Each(fn)
		}
	}
}

func (p *Parameter) eachSchema(fn func(*Schema)) {
	if p != nil {
		p.Schema.Each(fn)
	}
}

func (r *Response) eachSchema(fn func(*Schema)) {
	if r != nil {
		eachContentSchema(r.Content, fn)
	}
}

func eachContentSchema(c *Content, fn func(*Schema)) {
	for _, mt := range c.All() {
		if mt != nil {
			mt.Schema.Each(fn)
		}
	}
}
