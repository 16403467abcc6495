// Package s42 renders structured postal addresses with UPU S42 PATDL
// templates. It re-exports the common entry points of the pkg/ tree so a
// single import covers the usual flow:
//
//	gen := s42.NewOrchestrator(s42.WithEmbeddedTemplates())
//	out, err := gen.Generate(ctx, s42.Request{
//		Country: "NL",
//		Fields:  map[string]string{"town": "Amsterdam", "postcode": "1234AB"},
//	})
package s42
