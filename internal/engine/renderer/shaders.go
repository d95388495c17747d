package renderer

const meshVertexShader = `
#version 410 core

layout (location = 0) in vec3 aPosition;
layout (location = 1) in vec3 aNormal;

uniform mat4 uModel;
uniform mat4 uView;
uniform mat4 uProjection;

out vec3 vNormal;
out vec3 vWorldPos;

void main() {
	vec4 world = uModel * vec4(aPosition, 1.0);
	vWorldPos = world.xyz;
	vNormal = mat3(transpose(inverse(uModel))) * aNormal;
	gl_Position = uProjection * uView * world;
}
`

const meshFragmentShader = `
#version 410 core

layout (std140) uniform Material {
	vec4 color;     // rgb + opacity
	vec4 emissive;  // rgb
	vec4 params;    // metalness, roughness, transparent
};

const int MAX_LIGHTS = 4;

uniform vec3 uAmbient;
uniform int uLightCount;
uniform vec3 uLightDir[MAX_LIGHTS];
uniform vec3 uLightColor[MAX_LIGHTS];
uniform vec3 uCameraPos;

in vec3 vNormal;
in vec3 vWorldPos;

out vec4 FragColor;

void main() {
	vec3 n = normalize(vNormal);
	vec3 v = normalize(uCameraPos - vWorldPos);
	float metalness = params.x;
	float roughness = max(params.y, 0.04);
	float shininess = 2.0 / (roughness * roughness) - 2.0;
	vec3 specColor = mix(vec3(0.04), color.rgb, metalness);
	vec3 diffColor = color.rgb * (1.0 - metalness);

	vec3 lit = uAmbient * color.rgb;
	for (int i = 0; i < uLightCount; i++) {
		vec3 l = -uLightDir[i];
		float ndl = max(dot(n, l), 0.0);
		vec3 h = normalize(l + v);
		float spec = pow(max(dot(n, h), 0.0), shininess) * ndl;
		lit += uLightColor[i] * (diffColor * ndl + specColor * spec);
	}
	lit += emissive.rgb;

	float alpha = params.z > 0.5 ? color.a : 1.0;
	FragColor = vec4(lit, alpha);
}
`
