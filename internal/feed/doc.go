// Package feed decides which posts a viewer may see.
//
// A viewer's SocialGraph (accepted connections, team memberships and team
// follows) becomes an Audience: the union of the viewer's own posts, posts by
// connections, posts in the viewer's teams and public posts by others. The
// Audience renders as a single SQL predicate for listing queries, so a post
// that qualifies through several clauses is still returned once, and as an
// in-process check for single-post reads.
package feed
