package auth

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"github.com/rs/zerolog/log"
)

// Authorize turns a gateway authorizer event into an IAM policy decision.
// Every verification failure, whatever its cause, comes back as a deny for
// the anonymous principal: the caller is never told which check failed.
func (v *Verifier) Authorize(ctx context.Context, event events.APIGatewayCustomAuthorizerRequest) events.APIGatewayCustomAuthorizerResponse {
	principal, err := v.VerifyHeader(ctx, event.AuthorizationToken)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("authorization denied")
		return policy(AnonymousPrincipal, "Deny", event.MethodArn, nil)
	}

	return policy(principal, "Allow", event.MethodArn, map[string]any{"sub": principal})
}

func policy(principalID, effect, resource string, authContext map[string]any) events.APIGatewayCustomAuthorizerResponse {
	return events.APIGatewayCustomAuthorizerResponse{
		PrincipalID: principalID,
		Context:     authContext,
		PolicyDocument: events.APIGatewayCustomAuthorizerPolicy{
			Version: "2012-10-17",
			Statement: []events.IAMPolicyStatement{
				{
					Action:   []string{"execute-api:Invoke"},
					Effect:   effect,
					Resource: []string{resource},
				},
			},
		},
	}
}
