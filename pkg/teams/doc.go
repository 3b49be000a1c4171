// Package teams implements the team role and subscription plan resolution
// engine: effective per-team roles, plan resolution through the billing
// gateway (with a free-tier fallback), and seat-quota enforcement around
// member mutations.
//
// # Plan resolution
//
// A team's plan is derived from its owner on every call, never cached. The
// owner's billing subscription identifier is stored encrypted and decrypted
// only at the moment of the gateway call. Owners without a subscription fall
// back to a manually assigned plan (when catalog-valid) or the Community
// tier.
//
// # Seat quotas
//
// AddTeamRole and DeleteTeamMember compare the team's member count against
// the resolved plan's seat envelope and adjust the purchased seat count
// through the billing gateway when the team is at or above it. The seat
// adjustment and the role mutation are not wrapped in one transaction; a
// crash between the two leaves them inconsistent. The reconciler reports
// (but does not repair) such drift.
//
// # Errors
//
// Missing teams, roles, owners and invites surface as ErrNotFound, checked
// with errors.Is. Billing gateway failures propagate unchanged as
// *billing.UpstreamError. The engine never retries.
package teams
