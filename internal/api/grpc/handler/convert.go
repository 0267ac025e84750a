package handler

import (
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/dtroode/userauth/internal/model"
	pb "github.com/dtroode/userauth/internal/proto/userauth/v1"
)

func registerParams(req *pb.RegisterRequest) model.RegisterParams {
	return model.RegisterParams{
		Email:     req.GetEmail(),
		Username:  req.GetUsername(),
		Password:  req.GetPassword(),
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
}

func loginParams(req *pb.LoginRequest) model.LoginParams {
	return model.LoginParams{
		Email:    req.GetEmail(),
		Password: req.GetPassword(),
	}
}

func authResponse(result model.AuthResult) *pb.AuthResponse {
	return &pb.AuthResponse{
		User: &pb.User{
			Id:       result.User.ID.String(),
			Email:    result.User.Email,
			Username: result.User.Username,
			Role:     string(result.User.Role),
		},
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
	}
}

func refreshResponse(pair model.TokenPair) *pb.RefreshResponse {
	return &pb.RefreshResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}
}

func meResponse(profile model.Profile) *pb.MeResponse {
	return &pb.MeResponse{
		Id:        profile.ID.String(),
		Email:     profile.Email,
		Username:  profile.Username,
		FirstName: profile.FirstName,
		LastName:  profile.LastName,
		Bio:       profile.Bio,
		AvatarUrl: profile.AvatarURL,
		Role:      string(profile.Role),
		CreatedAt: timestamppb.New(profile.CreatedAt),
	}
}
