package deepcrawl

import "testing"

func TestDomainPolicy_SameOriginOnly(t *testing.T) {
	p, err := NewDomainPolicy(DomainSameOrigin, "https://app.example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.Allowed("https://app.example.com/page") {
		t.Fatalf("expected same-origin URL to be allowed")
	}
	if p.Allowed("https://api.app.example.com/page") {
		t.Fatalf("expected subdomain to be rejected under same-origin-only")
	}
}

func TestDomainPolicy_SubdomainsEitherDirection(t *testing.T) {
	p, err := NewDomainPolicy(DomainSameOriginAndSubdomains, "https://app.example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.Allowed("https://api.app.example.com/page") {
		t.Fatalf("expected subdomain of origin to be allowed")
	}

	p2, err := NewDomainPolicy(DomainSameOriginAndSubdomains, "https://api.app.example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p2.Allowed("https://app.example.com/page") {
		t.Fatalf("expected origin's parent domain to be allowed (either side is a suffix of the other)")
	}
	if p2.Allowed("https://other.com/page") {
		t.Fatalf("expected unrelated domain to be rejected")
	}
}

func TestDomainPolicy_Any(t *testing.T) {
	p, err := NewDomainPolicy(DomainAny, "https://app.example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.Allowed("https://totally-different.org/page") {
		t.Fatalf("expected DomainAny to allow any host")
	}
}
