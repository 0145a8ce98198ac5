// internal/domain/models/urls.go
package models

import "strings"

// URLFor returns the canonical site path of a document of type docType.
// key is the slug for routable types and the _id for news, which has no slug.
// It returns "" for types that have no page of their own.
func URLFor(docType, key string) string {
	key = strings.Trim(key, "/")
	switch docType {
	case TypeHomePage:
		return "/"
	case TypeBlogIndex:
		return "/blog"
	}
	if key == "" {
		return ""
	}
	switch docType {
	case TypePage:
		return "/" + key
	case TypeBlog:
		return "/blog/" + key
	case TypeEvent:
		return "/events/" + key
	case TypeNews:
		return "/news/" + key
	case TypeService:
		return "/services/" + key
	case TypeClientStory:
		return "/client-stories/" + key
	default:
		return ""
	}
}

// DocumentURL returns the canonical path of d.
func DocumentURL(d Document) string {
	if d.Type() == TypeNews {
		return URLFor(TypeNews, PublishedID(d.ID()))
	}
	return URLFor(d.Type(), d.Slug())
}
