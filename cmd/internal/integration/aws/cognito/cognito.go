package cognitoclient

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
)

type CognitoInterface interface {
	SignIn(ctx context.Context, login *UserLogin) (*AuthCreate, error)
	GetProfile(ctx context.Context, accessToken string) (*Profile, error)
	SignOut(ctx context.Context, accessToken string) error
}

type UserLogin struct {
	Email    string
	Password string
}

type AuthCreate struct {
	AccessToken string
	IDToken     string
	ExpiresIn   int32
}

// Profile is the subset of user attributes the dashboard shows.
type Profile struct {
	Sub       string
	Email     string
	Name      string
	AvatarURL string
}

type Options struct {
	Region       string
	ClientID     string
	ClientSecret string
}

type identityProvider interface {
	InitiateAuth(ctx context.Context, in *cip.InitiateAuthInput, optFns ...func(*cip.Options)) (*cip.InitiateAuthOutput, error)
	GetUser(ctx context.Context, in *cip.GetUserInput, optFns ...func(*cip.Options)) (*cip.GetUserOutput, error)
	GlobalSignOut(ctx context.Context, in *cip.GlobalSignOutInput, optFns ...func(*cip.Options)) (*cip.GlobalSignOutOutput, error)
}

type CognitoClient struct {
	idp          identityProvider
	clientID     string
	clientSecret string
}

func InitCognitoClient(ctx context.Context, opts Options) (*CognitoClient, error) {
	var loadOpts []func(*config.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(opts.Region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return newCognitoClient(cip.NewFromConfig(cfg), opts), nil
}

func newCognitoClient(idp identityProvider, opts Options) *CognitoClient {
	return &CognitoClient{idp: idp, clientID: opts.ClientID, clientSecret: opts.ClientSecret}
}

func (c *CognitoClient) SignIn(ctx context.Context, login *UserLogin) (*AuthCreate, error) {
	params := map[string]string{
		"USERNAME": login.Email,
		"PASSWORD": login.Password,
	}
	if c.clientSecret != "" {
		params["SECRET_HASH"] = c.secretHash(login.Email)
	}

	out, err := c.idp.InitiateAuth(ctx, &cip.InitiateAuthInput{
		AuthFlow:       types.AuthFlowTypeUserPasswordAuth,
		ClientId:       aws.String(c.clientID),
		AuthParameters: params,
	})
	if err != nil {
		return nil, err
	}

	// A challenge (new password, MFA) means the user cannot be signed in here.
	if out.AuthenticationResult == nil {
		return nil, fmt.Errorf("sign in requires challenge %s", out.ChallengeName)
	}

	res := out.AuthenticationResult
	return &AuthCreate{
		AccessToken: aws.ToString(res.AccessToken),
		IDToken:     aws.ToString(res.IdToken),
		ExpiresIn:   res.ExpiresIn,
	}, nil
}

func (c *CognitoClient) GetProfile(ctx context.Context, accessToken string) (*Profile, error) {
	out, err := c.idp.GetUser(ctx, &cip.GetUserInput{AccessToken: aws.String(accessToken)})
	if err != nil {
		return nil, err
	}

	profile := &Profile{}
	for _, attr := range out.UserAttributes {
		value := aws.ToString(attr.Value)
		switch aws.ToString(attr.Name) {
		case "sub":
			profile.Sub = value
		case "email":
			profile.Email = value
		case "name":
			profile.Name = value
		case "picture":
			profile.AvatarURL = value
		}
	}

	if profile.Sub == "" {
		return nil, errors.New("user attributes carry no sub")
	}
	if profile.Name == "" {
		profile.Name = profile.Email
	}
	return profile, nil
}

func (c *CognitoClient) SignOut(ctx context.Context, accessToken string) error {
	_, err := c.idp.GlobalSignOut(ctx, &cip.GlobalSignOutInput{AccessToken: aws.String(accessToken)})
	return err
}

// secretHash is Base64(HMAC_SHA256(clientSecret, username + clientID)), as
// required for app clients that have a secret.
func (c *CognitoClient) secretHash(username string) string {
	mac := hmac.New(sha256.New, []byte(c.clientSecret))
	mac.Write([]byte(username + c.clientID))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
