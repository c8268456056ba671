package toolserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/seo-optimizer/seoaudit/analyzer"
	"github.com/seo-optimizer/seoaudit/report"
)

func urlSchema(description string) map[string]any {
	return map[string]any{"type": "string", "format": "uri", "description": description}
}

func objectSchema(properties map[string]any, required ...string) map[string]any {
	return map[string]any{"type": "object", "properties": properties, "required": required}
}

var tools = []tool{
	{
		Name: "seo_audit",
		Description: "Run a comprehensive SEO audit on a webpage. Returns a score out of 100 with detailed " +
			"findings across 10 categories: title, description, headings, images, links, technical, " +
			"structured data, social, content, and performance.",
		InputSchema: objectSchema(map[string]any{
			"url": urlSchema("The URL of the webpage to audit"),
		}, "url"),
	},
	{
		Name: "extract_meta",
		Description: "Extract all SEO-relevant meta tags, Open Graph, Twitter Card, JSON-LD structured data, " +
			"heading hierarchy, links, and images from a webpage.",
		InputSchema: objectSchema(map[string]any{
			"url": urlSchema("The URL of the webpage to extract data from"),
		}, "url"),
	},
	{
		Name: "compare_seo",
		Description: "Compare SEO scores and meta tags across multiple webpages side by side. Useful for " +
			"competitive analysis or auditing multiple pages on your site.",
		InputSchema: objectSchema(map[string]any{
			"urls": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string", "format": "uri"},
				"minItems":    analyzer.MinCompare,
				"maxItems":    analyzer.MaxCompare,
				"description": "List of 2-5 URLs to compare",
			},
		}, "urls"),
	},
	{
		Name:        "extract_json",
		Description: "Extract raw SEO data from a webpage as JSON. Useful for programmatic analysis or piping into other tools.",
		InputSchema: objectSchema(map[string]any{
			"url": urlSchema("The URL of the webpage to extract data from"),
		}, "url"),
	},
}

type urlArgs struct {
	URL string `json:"url"`
}

type urlsArgs struct {
	URLs []string `json:"urls"`
}

func invalidParams(format string, args ...any) *rpcError {
	return &rpcError{Code: codeInvalidParams, Message: fmt.Sprintf(format, args...)}
}

func checkURL(raw string) *rpcError {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return invalidParams("invalid url %q", raw)
	}
	return nil
}

func decodeArgs(raw json.RawMessage, dst any) *rpcError {
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return invalidParams("invalid arguments: %v", err)
	}
	return nil
}

// call runs one tool. Bad arguments are protocol errors; failures while
// fetching or auditing are tool results flagged isError.
func (s *Server) call(ctx context.Context, params callParams) (callResult, *rpcError) {
	switch params.Name {
	case "seo_audit", "extract_meta", "extract_json":
		var args urlArgs
		if rpcErr := decodeArgs(params.Arguments, &args); rpcErr != nil {
			return callResult{}, rpcErr
		}
		if rpcErr := checkURL(args.URL); rpcErr != nil {
			return callResult{}, rpcErr
		}
		return s.callURL(ctx, params.Name, args.URL), nil

	case "compare_seo":
		var args urlsArgs
		if rpcErr := decodeArgs(params.Arguments, &args); rpcErr != nil {
			return callResult{}, rpcErr
		}
		if n := len(args.URLs); n < analyzer.MinCompare || n > analyzer.MaxCompare {
			return callResult{}, invalidParams("urls must hold between %d and %d entries, got %d",
				analyzer.MinCompare, analyzer.MaxCompare, n)
		}
		for _, u := range args.URLs {
			if rpcErr := checkURL(u); rpcErr != nil {
				return callResult{}, rpcErr
			}
		}
		entries, err := s.svc.Compare(ctx, args.URLs)
		if err != nil {
			return errorResult(err.Error()), nil
		}
		return textResult(report.Comparison(entries)), nil
	}
	return callResult{}, invalidParams("unknown tool %q", params.Name)
}

func (s *Server) callURL(ctx context.Context, name, target string) callResult {
	if name == "extract_meta" {
		p, err := s.svc.Extract(ctx, target)
		if err != nil {
			return errorResult(err.Error())
		}
		return textResult(report.Extraction(p))
	}

	analysis, err := s.svc.Analyze(ctx, target, nil)
	if err != nil {
		return errorResult(err.Error())
	}
	if name == "seo_audit" {
		return textResult(report.Audit(analysis.Report, analysis.Extraction))
	}

	data, err := report.JSONRenderer{}.Render(analysis.Report, analysis.Extraction)
	if err != nil {
		return errorResult(err.Error())
	}
	return textResult(string(data))
}
