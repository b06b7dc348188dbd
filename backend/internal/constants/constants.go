package constants

// Graph resolution constants
const (
	// MaxSubscriptionDepth is the deepest chain of userSubscribedTo /
	// subscribedToUser fields the schema serves. Deeper selections are
	// capped: the branches past it shape as empty lists.
	MaxSubscriptionDepth = 3

	// MaxConcurrentRootFields bounds how many query root fields resolve at once
	MaxConcurrentRootFields = 4
)

// Member tier identifiers (MemberTypeId enum values)
const (
	MemberTypeBasic    = "BASIC"
	MemberTypeBusiness = "BUSINESS"
)

// Member tier reference values seeded into every store
const (
	BasicDiscount           = 2.3
	BasicPostsLimitPerMonth = 20

	BusinessDiscount           = 7.7
	BusinessPostsLimitPerMonth = 100
)

// HTTP constants
const (
	// GraphQLPath is the route accepting query documents
	GraphQLPath = "/graphql"

	// MaxRequestBodyBytes caps the size of an inbound query document
	MaxRequestBodyBytes = 1 << 20
)
