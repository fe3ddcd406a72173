package cognitoclient

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type idpMock struct {
	mock.Mock
}

func (m *idpMock) InitiateAuth(ctx context.Context, in *cip.InitiateAuthInput, _ ...func(*cip.Options)) (*cip.InitiateAuthOutput, error) {
	args := m.Called(in)
	out, _ := args.Get(0).(*cip.InitiateAuthOutput)
	return out, args.Error(1)
}

func (m *idpMock) GetUser(ctx context.Context, in *cip.GetUserInput, _ ...func(*cip.Options)) (*cip.GetUserOutput, error) {
	args := m.Called(in)
	out, _ := args.Get(0).(*cip.GetUserOutput)
	return out, args.Error(1)
}

func (m *idpMock) GlobalSignOut(ctx context.Context, in *cip.GlobalSignOutInput, _ ...func(*cip.Options)) (*cip.GlobalSignOutOutput, error) {
	args := m.Called(in)
	out, _ := args.Get(0).(*cip.GlobalSignOutOutput)
	return out, args.Error(1)
}

func TestSignInWithSecretHash(t *testing.T) {
	idp := &idpMock{}
	client := newCognitoClient(idp, Options{ClientID: "client", ClientSecret: "secret"})

	idp.On("InitiateAuth", mock.MatchedBy(func(in *cip.InitiateAuthInput) bool {
		return in.AuthFlow == types.AuthFlowTypeUserPasswordAuth &&
			aws.ToString(in.ClientId) == "client" &&
			in.AuthParameters["USERNAME"] == "ana@example.com" &&
			in.AuthParameters["SECRET_HASH"] == client.secretHash("ana@example.com")
	})).Return(&cip.InitiateAuthOutput{
		AuthenticationResult: &types.AuthenticationResultType{
			AccessToken: aws.String("access"),
			IdToken:     aws.String("id"),
			ExpiresIn:   3600,
		},
	}, nil)

	auth, err := client.SignIn(context.Background(), &UserLogin{Email: "ana@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, &AuthCreate{AccessToken: "access", IDToken: "id", ExpiresIn: 3600}, auth)
	idp.AssertExpectations(t)
}

func TestSignInChallenge(t *testing.T) {
	idp := &idpMock{}
	client := newCognitoClient(idp, Options{ClientID: "client"})
	idp.On("InitiateAuth", mock.Anything).Return(&cip.InitiateAuthOutput{ChallengeName: types.ChallengeNameTypeNewPasswordRequired}, nil)

	_, err := client.SignIn(context.Background(), &UserLogin{Email: "a@b.c", Password: "pw"})
	assert.ErrorContains(t, err, "NEW_PASSWORD_REQUIRED")
}

func TestGetProfile(t *testing.T) {
	idp := &idpMock{}
	client := newCognitoClient(idp, Options{ClientID: "client"})
	idp.On("GetUser", mock.Anything).Return(&cip.GetUserOutput{
		UserAttributes: []types.AttributeType{
			{Name: aws.String("sub"), Value: aws.String("sub-1")},
			{Name: aws.String("email"), Value: aws.String("ana@example.com")},
			{Name: aws.String("picture"), Value: aws.String("http://img/ana.png")},
		},
	}, nil)

	profile, err := client.GetProfile(context.Background(), "access")
	require.NoError(t, err)
	assert.Equal(t, &Profile{Sub: "sub-1", Email: "ana@example.com", Name: "ana@example.com", AvatarURL: "http://img/ana.png"}, profile)
}

func TestGetProfileWithoutSub(t *testing.T) {
	idp := &idpMock{}
	client := newCognitoClient(idp, Options{ClientID: "client"})
	idp.On("GetUser", mock.Anything).Return(&cip.GetUserOutput{}, nil)

	_, err := client.GetProfile(context.Background(), "access")
	assert.Error(t, err)
}
